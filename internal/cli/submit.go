package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	yaml "go.yaml.in/yaml/v3"

	"github.com/shaiso/Conveyor/internal/coordinator"
	"github.com/shaiso/Conveyor/internal/mq"
)

// NewSubmitCmd создаёт команду submit: публикация батча из YAML-файла
// в очередь координатора.
func NewSubmitCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <batch.yaml>",
		Short: "Опубликовать батч задач в очередь координатора",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := outputFn()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read batch file: %w", err)
			}

			var req coordinator.BatchRequest
			if err := yaml.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("unmarshal batch file: %w", err)
			}

			// Валидируем до публикации: кривой батч координатор
			// всё равно отбросит.
			if _, err := req.Build(time.Now()); err != nil {
				return fmt.Errorf("invalid batch: %w", err)
			}

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			conn, err := mq.NewConnection(mq.URL(), logger)
			if err != nil {
				return fmt.Errorf("connect to broker: %w", err)
			}
			defer conn.Close()

			if err := mq.SetupTopology(conn); err != nil {
				return fmt.Errorf("setup topology: %w", err)
			}

			if err := mq.NewPublisher(conn, logger).PublishBatch(ctx, &req); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("batch %q submitted (%d tasks)", req.Name, len(req.Tasks)))
			return nil
		},
	}
}
