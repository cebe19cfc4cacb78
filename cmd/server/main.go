package main

import "github.com/softgeniusinnovations/code-editor-server/internal/app"

func main() {
	app.Run()
}
