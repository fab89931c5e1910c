package main

import "netbox-reconciler/cmd"

func main() {
	cmd.Execute()
}
