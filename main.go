package main

import "selenium_page/presentation/cli"

func main() {
	cli.Execute()
}
