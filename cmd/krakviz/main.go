// cmd/krakviz/main.go
package main

import (
	"krakviz/internal/app"
	"krakviz/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
