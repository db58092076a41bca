package main

import (
	"github.com/matriculausa/payment_service/config"
	"github.com/matriculausa/payment_service/internal/api"
)

func main() {
	cfg := config.LoadConfig()
	api.StartServer(cfg)
}
