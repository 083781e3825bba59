package main

import "github.com/dbsmedya/goreef/cmd/goreef/cmd"

func main() {
	cmd.Execute()
}
