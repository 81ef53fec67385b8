package main

import "github.com/bucu0368/Webhook-Create/cmd"

func main() {
	cmd.Execute()
}
