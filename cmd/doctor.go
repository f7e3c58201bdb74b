package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"vibesync/internal/config"
	"vibesync/internal/server"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check external dependencies and configuration",
	Long:  `Report ffmpeg / ffprobe availability and which optional services are configured.`,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorRow 一项检查结果
type doctorRow struct {
	name   string
	status string
	detail string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	ff := server.NewFFmpegClient(&cfg.Media)
	checks := []doctorRow{
		checkBinary(ctx, "ffmpeg", ff.FFmpegPath(), ff.Version),
		checkBinary(ctx, "ffprobe", ff.FFprobePath(), ff.Version),
	}
	checks = append(checks, configRows(cfg)...)

	rows := make([][]string, 0, len(checks))
	missing := 0
	for _, c := range checks {
		if c.status == "missing" {
			missing++
		}
		rows = append(rows, []string{c.name, c.status, c.detail})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Status", "Detail"}, rows))

	if missing > 0 {
		return fmt.Errorf("%d required dependencies missing", missing)
	}
	return nil
}

func checkBinary(ctx context.Context, name, binary string, version func(context.Context, string) (string, error)) doctorRow {
	path, err := exec.LookPath(binary)
	if err != nil {
		return doctorRow{name: name, status: "missing", detail: fmt.Sprintf("binary %q not found", binary)}
	}
	v, err := version(ctx, path)
	if err != nil {
		return doctorRow{name: name, status: "missing", detail: err.Error()}
	}
	return doctorRow{name: name, status: "ok", detail: v}
}

// configRows 可选服务是否已配置
func configRows(cfg *config.Config) []doctorRow {
	rows := []doctorRow{
		{name: "storage", status: "ok", detail: cfg.Storage.Type},
		{name: "credits", status: "ok", detail: cfg.Credits.Backend},
	}
	rows = append(rows,
		optionalRow("video analysis", cfg.AI.APIKey != "", cfg.AI.Provider+"/"+cfg.AI.Model),
		optionalRow("music generation", cfg.Music.Project != "" || cfg.Music.Endpoint != "", cfg.Music.Model),
		optionalRow("mongodb", cfg.Mongo.URI != "", cfg.Mongo.Database),
		optionalRow("redis", cfg.Redis.Addr != "", cfg.Redis.Addr),
		optionalRow("jwt auth", cfg.Auth.JWTSecret != "", "Authorization: Bearer"),
		optionalRow("payment webhook", cfg.Credits.WebhookSecret != "", "Stripe-Signature"),
	)
	return rows
}

func optionalRow(name string, enabled bool, detail string) doctorRow {
	if !enabled {
		return doctorRow{name: name, status: "disabled", detail: "-"}
	}
	return doctorRow{name: name, status: "ok", detail: detail}
}
