package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"kifudb/internal/adapters"
	"kifudb/internal/bootstrap"
	"kifudb/internal/charset"
	"kifudb/internal/domain/kifu"
	repo "kifudb/internal/repository"
	"kifudb/internal/usecase/collector"
	kifuUsecase "kifudb/internal/usecase/kifu"
)

func main() {
	logger := NewLogger()
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := &cli.App{
		Name:  "collector",
		Usage: "import, inspect and normalize SGF game records",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: ".env", Usage: "path to the dotenv config"},
			&cli.StringFlag{Name: "charset", Usage: "encoding of the records, sniffed when empty"},
		},
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "decode every .sgf file under a directory and store it in the archive",
				ArgsUsage: "[dir]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "workers", Usage: "parallel decoders, COLLECTOR_WORKERS when 0"},
				},
				Action: func(c *cli.Context) error { return runImport(c, logger) },
			},
			{
				Name:      "show",
				Usage:     "print the header and main line of a record",
				ArgsUsage: "<file>",
				Action:    runShow,
			},
			{
				Name:      "normalize",
				Usage:     "rewrite a record as canonical UTF-8 SGF on stdout",
				ArgsUsage: "<file>",
				Action:    runNormalize,
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Errorw("collector failed", "error", err)
		os.Exit(1)
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func runImport(c *cli.Context, log *zap.SugaredLogger) error {
	cfg, err := bootstrap.Setup(c.String("config"))
	if err != nil {
		return err
	}
	dir := c.Args().First()
	if dir == "" {
		dir = cfg.KifuDir
	}
	if dir == "" {
		return cli.Exit("no directory given and KIFU_DIR is not set", 2)
	}
	workers := c.Int("workers")
	if workers <= 0 {
		workers = cfg.CollectorWorker
	}
	cs := c.String("charset")
	if cs == "" {
		cs = cfg.DefaultCharset
	}

	ctx := c.Context
	mongoAdapter := adapters.NewAdapterMongo(cfg, log)
	if err := mongoAdapter.Init(ctx); err != nil {
		return err
	}
	defer mongoAdapter.Close(context.Background())
	redisAdapter := adapters.NewAdapterRedis(cfg, log)
	if err := redisAdapter.Init(ctx); err != nil {
		return err
	}
	defer redisAdapter.Close(context.Background())

	kifuRepo := repo.NewKifuRepository(*cfg, log, redisAdapter.GetClient(), mongoAdapter.Database)
	if err := kifuRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	uc := kifuUsecase.NewKifuUseCase(kifuRepo, log, cs)

	report, err := collector.NewCollector(uc, log, workers, cs).ImportDir(ctx, dir)
	if err != nil {
		return err
	}
	out := json.NewEncoder(c.App.Writer)
	out.SetIndent("", "  ")
	return out.Encode(report)
}

func readRecord(c *cli.Context) (string, error) {
	path := c.Args().First()
	if path == "" {
		return "", cli.Exit("a record file is required", 2)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "read record")
	}
	return charset.Decode(raw, c.String("charset"))
}

func runShow(c *cli.Context) error {
	text, err := readRecord(c)
	if err != nil {
		return err
	}
	r, err := kifu.Decode(text)
	if err != nil {
		return err
	}

	w := c.App.Writer
	info := r.Info
	fmt.Fprintf(w, "%s\n", info.DisplayName())
	fmt.Fprintf(w, "black:  %s %s\n", info.Black.Name, info.Black.Rank.ChineseString())
	fmt.Fprintf(w, "white:  %s %s\n", info.White.Name, info.White.Rank.ChineseString())
	fmt.Fprintf(w, "date:   %s\n", info.Date)
	fmt.Fprintf(w, "board:  %dx%d komi %v\n", info.BoardSize, info.BoardSize, info.Komi)
	fmt.Fprintf(w, "result: %s\n", info.Result.ChineseString())

	moves := r.MainLine()
	fmt.Fprintf(w, "moves:  %d\n", len(moves))
	for _, m := range moves {
		switch {
		case m.Kind == kifu.KindPass:
			fmt.Fprintf(w, "%4d %v pass\n", m.Number, m.Side)
		case m.Rejected:
			fmt.Fprintf(w, "%4d %v %v illegal\n", m.Number, m.Side, m.Point)
		default:
			fmt.Fprintf(w, "%4d %v %v\n", m.Number, m.Side, m.Point)
		}
	}
	return nil
}

func runNormalize(c *cli.Context) error {
	text, err := readRecord(c)
	if err != nil {
		return err
	}
	r, err := kifu.Decode(text)
	if err != nil {
		return err
	}
	out, err := kifu.Encode(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, out)
	return err
}
