package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-daw/export"
)

func newUploadCmd(a *app) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload rendered WAV files to the configured MinIO bucket",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("prefix") {
				a.cfg.Minio.Prefix = prefix
			}

			return a.upload(cmd.Context(), args)
		},
	}
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "object name prefix (default: minio.prefix from the config)")
	cmd.Example = `  algo-daw upload mix.wav
  algo-daw upload -p "album/" stems/*.wav`

	return cmd
}

func (a *app) minioSink(ctx context.Context) (*export.MinioSink, error) {
	sink, err := export.NewMinioSink(a.cfg.Minio.Sink())
	if err != nil {
		return nil, err
	}

	if err := sink.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	return sink, nil
}

func (a *app) upload(ctx context.Context, paths []string) error {
	// Decode first so a bad file fails before anything is uploaded.
	for _, path := range paths {
		if _, _, err := export.ReadWAVFile(path); err != nil {
			return fmt.Errorf("upload: %s: %w", path, err)
		}
	}

	sink, err := a.minioSink(ctx)
	if err != nil {
		return err
	}

	for _, path := range paths {
		loc, err := uploadFile(ctx, sink, path)
		if err != nil {
			return err
		}
		a.log.Info("uploaded", zap.String("file", path), zap.String("object", loc))
	}

	return nil
}

func uploadFile(ctx context.Context, sink export.Sink, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}

	return sink.Put(ctx, filepath.Base(path), f, st.Size())
}
