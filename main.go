package main

import "academic-records/cmd"

func main() {
	cmd.Execute()
}
