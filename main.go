package main

import "github.com/ftl/adatadapter/cmd"

func main() {
	cmd.Execute()
}
