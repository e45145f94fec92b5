package main

import "github.com/ozoops/health5070/internal/cli"

func main() { cli.Main() }
