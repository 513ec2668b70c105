package main

import (
	"log"
)

func main() {
	log.Println("[Main] 互动通知网关启动中...")

	runner := NewApplicationRunner()
	runner.Run()

	log.Println("[Main] 互动通知网关已停止")
}
