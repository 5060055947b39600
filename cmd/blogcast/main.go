package main

import "github.com/UDaygupta12512/blogcast/internal/cli"

func main() { cli.Main() }
