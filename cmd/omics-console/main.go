package main

import "github.com/reslab-bio/omics-console/internal/cli"

func main() {
	cli.Execute()
}
