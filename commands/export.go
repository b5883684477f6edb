// Package commands holds the CLI subcommands registered on the app's root command.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rabfront/client"
	"rabfront/config"
	"rabfront/export"
	"rabfront/services"
)

type exportOptions struct {
	variant  string
	all      bool
	project  string
	logo     string
	out      string
	s3Bucket string
	s3Prefix string
	api      string
}

// NewExportCommand returns the `export` subcommand, which downloads export
// artifacts for one estimation into a directory or an S3 bucket.
func NewExportCommand(cfg config.Config, log *zap.Logger) *cobra.Command {
	opts := exportOptions{
		variant:  string(services.VariantRABPDF),
		out:      cfg.OutputDir,
		s3Bucket: cfg.S3.Bucket,
		s3Prefix: cfg.S3.Prefix,
		api:      "http://127.0.0.1:8090",
	}

	cmd := &cobra.Command{
		Use:   "export <estimation-id>",
		Short: "Download RAB export documents for an estimation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			variants := services.Variants
			if !opts.all {
				v, err := services.ParseVariant(opts.variant)
				if err != nil {
					return err
				}
				variants = []services.Variant{v}
			}

			req := export.Request{EstimationID: args[0], ProjectName: opts.project}
			if opts.logo != "" {
				logo, err := os.ReadFile(opts.logo)
				if err != nil {
					return fmt.Errorf("read logo: %w", err)
				}
				req.Logo, req.LogoName = logo, filepath.Base(opts.logo)
			}

			sink, where, err := newSink(ctx, cfg, opts)
			if err != nil {
				return err
			}

			apiCfg := cfg
			apiCfg.ResolveBaseURLs(opts.api)
			c := client.New(apiCfg.EstimationBaseURL, apiCfg.ExportBaseURL,
				client.StaticSession(apiCfg.APIToken), client.WithLogger(log))

			fmt.Fprintf(cmd.OutOrStdout(), "Exporting %s to %s\n", req.EstimationID, where)
			return runExports(ctx, export.NewExporter(c), sink, req, variants, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.variant, "variant", opts.variant, "export variant (rab-pdf, rab-excel, volume-pdf, job-item-pdf, kategori-pdf, ahsp-pdf, master-item-pdf)")
	f.BoolVar(&opts.all, "all", false, "export every variant")
	f.StringVar(&opts.project, "project", "", "project name used for fallback file names")
	f.StringVar(&opts.logo, "logo", "", "logo image attached to the RAB PDF")
	f.StringVar(&opts.out, "out", opts.out, "output directory")
	f.StringVar(&opts.s3Bucket, "s3-bucket", opts.s3Bucket, "upload to this S3 bucket instead of --out")
	f.StringVar(&opts.s3Prefix, "s3-prefix", opts.s3Prefix, "S3 key prefix")
	f.StringVar(&opts.api, "api", opts.api, "origin used when the API URLs are not configured")
	return cmd
}

func newSink(ctx context.Context, cfg config.Config, opts exportOptions) (export.Sink, string, error) {
	if opts.s3Bucket == "" {
		return export.DirSink{Dir: opts.out}, opts.out, nil
	}
	sink, err := export.NewS3Sink(ctx, export.S3Config{
		Bucket:          opts.s3Bucket,
		Prefix:          opts.s3Prefix,
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
	})
	if err != nil {
		return nil, "", err
	}
	return sink, fmt.Sprintf("s3://%s/%s", sink.Bucket, sink.Prefix), nil
}

// runExports runs each variant independently and reports every outcome. It
// fails when any variant failed.
func runExports(ctx context.Context, x *export.Exporter, sink export.Sink, req export.Request, variants []services.Variant, w io.Writer) error {
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	failed := 0
	for _, v := range variants {
		req.Variant = v
		res, err := x.Export(ctx, req, sink)
		if err != nil {
			failed++
			bad.Fprintf(w, "✗ %-16s %v\n", v, err)
			continue
		}
		ok.Fprintf(w, "✓ %-16s %s (%s)\n", v, res.Filename, humanize.Bytes(uint64(res.Size)))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d exports failed", failed, len(variants))
	}
	return nil
}
