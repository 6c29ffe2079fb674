package main

import "github.com/autopeer-io/voxpeer/cmd/vpeer-agent/app"

func main() {
	app.NewApp().Run()
}
