package main

import "geoattend/internal/app/server"

func main() {
	server.Run()
}
