package main

import (
	"os"

	"vibesync/cmd"
)

// @title       VibeSync API
// @version     1.0
// @description 视频配乐服务：视频分析、音乐生成、响度感知的视频合成与积分管理
// @BasePath    /
func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
