package main

import "github.com/frahmantamala/vaccination-registry/cmd"

func main() {
	cmd.Execute()
}
