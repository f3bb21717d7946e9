// Command gomarket manages a persistent shopping cart from the command line.
package main

import "github.com/mesh-intelligence/gomarket/internal/cli"

func main() {
	cli.Execute()
}
