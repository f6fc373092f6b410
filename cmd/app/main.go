package main

import (
	_ "InvestxApi/cmd/db"
	"InvestxApi/internal/app"
)

func main() {
	app.Start()
}
