package main

import "github.com/rommelmars/Attendance-Tracker-Company/cmd"

func main() {
	cmd.Execute()
}
