// cmd/seeddb/main.go
package main

import (
	"seeddb/internal/app"
	"seeddb/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
