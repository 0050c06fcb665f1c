package main

import (
	"github.com/leshachaplin/eventrelay/app"
	"github.com/leshachaplin/eventrelay/internal/config"
)

func main() {
	app.New(config.Load).Start()
}
