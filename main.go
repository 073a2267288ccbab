package main

import "taskboard-service/cmd"

func main() {
	cmd.Execute()
}
