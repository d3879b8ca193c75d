package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/backend"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/configuration"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/services/command"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/services/query"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/upload"
)

func readUploadFile(path string) (upload.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return upload.File{}, err
	}
	return upload.File{
		Name:        filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

// progressPrinter prints a line whenever a file crosses another quarter.
func progressPrinter() upload.ProgressFunc {
	var mu sync.Mutex
	printed := map[string]int{}
	return func(p upload.Progress) {
		mu.Lock()
		defer mu.Unlock()
		step := p.Percent / 25
		if last, ok := printed[p.File]; ok && step <= last {
			return
		}
		printed[p.File] = step
		fmt.Fprintf(stdout, "%-30s %3d%%\n", p.File, p.Percent)
	}
}

func newUploadCmd(cfg *configuration.ClientConfig) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload images (svg, png, jpeg or gif, at most 5 MB each)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]upload.File, 0, len(args))
			for _, path := range args {
				f, err := readUploadFile(path)
				if err != nil {
					return err
				}
				files = append(files, f)
			}

			return withUser(cmd.Context(), cfg, func(_ *backend.Client, username string) error {
				uploader, err := upload.NewUploader(cfg.ServerURL)
				if err != nil {
					return err
				}
				var onProgress upload.ProgressFunc
				if !quiet {
					onProgress = progressPrinter()
				}
				if err := uploader.UploadFiles(cmd.Context(), files, username, onProgress); err != nil {
					return err
				}
				success("uploaded %d file(s)", len(files))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print progress")
	return cmd
}

func newListCmd(cfg *configuration.ClientConfig, output *string) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List your images, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd.Context(), cfg, func(client *backend.Client, username string) error {
				files := query.SearchFiles(cmd.Context(), client, username, search)
				if done, err := writeStructured(*output, files); done {
					return err
				}
				return writeFileTable(files)
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "only images whose name or size contains this text")
	return cmd
}

func newRemoveCmd(cfg *configuration.ClientConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd.Context(), cfg, func(client *backend.Client, _ string) error {
				failed := 0
				for _, id := range args {
					if command.DeleteImage(cmd.Context(), client, id) {
						success("deleted %s", id)
						continue
					}
					failed++
					fmt.Fprintln(stdout, color.RedString("could not delete %s", id))
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d deletes failed", failed, len(args))
				}
				return nil
			})
		},
	}
}

func proxyURL(ctx context.Context, serverURL string, client *backend.Client, id string) (string, error) {
	record, err := client.Collection(models.FilesCollection).GetOne(ctx, id)
	if err != nil {
		return "", err
	}
	var f models.FileRecord
	if err := record.Decode(&f); err != nil {
		return "", err
	}
	return strings.TrimRight(serverURL, "/") + upload.ProxyImagePath(f.ID, f.Image), nil
}

func newURLCmd(cfg *configuration.ClientConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "url <id>",
		Short: "Print the shareable URL of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), cfg, func(client *backend.Client) error {
				u, err := proxyURL(cmd.Context(), cfg.ServerURL, client, args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(stdout, u)
				return err
			})
		},
	}
}

type stats struct {
	Files     string `json:"files" yaml:"files"`
	TotalSize string `json:"total_size" yaml:"total_size"`
}

func newStatsCmd(cfg *configuration.ClientConfig, output *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how many images you uploaded and their total size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd.Context(), cfg, func(client *backend.Client, username string) error {
				files := query.GetFiles(cmd.Context(), client, username)
				s := stats{
					Files:     query.FileUploadCount(files),
					TotalSize: query.TotalFileSize(files),
				}
				if done, err := writeStructured(*output, s); done {
					return err
				}
				_, err := fmt.Fprintf(stdout, "images: %s\ntotal:  %s\n", s.Files, s.TotalSize)
				return err
			})
		},
	}
}
