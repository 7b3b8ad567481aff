package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	internalstorage "github.com/LENAX/dag-engine/internal/storage"
	"github.com/LENAX/dag-engine/pkg/api"
	"github.com/LENAX/dag-engine/pkg/config"
	"github.com/LENAX/dag-engine/pkg/core/engine"
)

var (
	serverHost string
	serverPort int
)

// serverCmd server命令组
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "HTTP API服务管理",
}

// serverStartCmd server start命令
var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "启动HTTP API服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := make([]engine.Option, 0)
		if dbType != "" {
			repo, err := internalstorage.OpenReportRepo(dbType, dbDSN)
			if err != nil {
				return err
			}
			defer repo.Close()
			opts = append(opts, engine.WithReportRepository(repo))
		}

		eng := engine.NewEngine(opts...)
		eng.Start()
		defer func() {
			if err := eng.Shutdown(); err != nil {
				log.Printf("关闭引擎失败: %v", err)
			}
		}()

		serverConfig := api.DefaultServerConfig()
		serverConfig.Host = serverHost
		serverConfig.Port = serverPort
		server := api.NewAPIServer(eng, config.NewHandlerRegistry(), serverConfig, Version)

		// 监听退出信号做优雅关闭
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-quit
			log.Println("收到退出信号，正在关闭服务器...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Printf("关闭服务器失败: %v", err)
			}
		}()

		return server.Start()
	},
}

func init() {
	serverStartCmd.Flags().StringVar(&serverHost, "host", "0.0.0.0", "监听地址")
	serverStartCmd.Flags().IntVar(&serverPort, "port", 8080, "监听端口")
	serverCmd.AddCommand(serverStartCmd)
}
