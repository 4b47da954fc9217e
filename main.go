package main

import "github.com/dhcgn/pgp-sig-extract/cmd"

func main() {
	cmd.Execute()
}
