package main

import "go-logstore/internal/app"

func main() {
	app.Run()
}
