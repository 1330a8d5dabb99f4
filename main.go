package main

import "github.com/kozaktomas/field-reports/cmd"

func main() {
	cmd.Execute()
}
