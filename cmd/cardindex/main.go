package main

import "card-price-index/internal/cli"

func main() {
	cli.Execute()
}
