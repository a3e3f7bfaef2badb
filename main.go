package main

import "github.com/frahmantamala/procurement-inventory/cmd"

func main() {
	cmd.Execute()
}
