// Command goalplan plans goals as ordered task lists and schedules them.
package main

import "github.com/twiced-technology-gmbh/goalplan/cmd"

func main() {
	cmd.Execute()
}
