package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/transferdesk/platform/internal/infra"
)

func archiveCmd(e *env) *cobra.Command {
	c := &cobra.Command{
		Use:   "archive",
		Short: "Inspect the export archive bucket",
	}

	var prefix string
	ls := &cobra.Command{
		Use:   "ls",
		Short: "List archived exports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if e.cfg.ExportS3Bucket == "" {
				return fmt.Errorf("EXPORT_S3_BUCKET is not set")
			}
			s3Store, err := infra.NewS3Store(cmd.Context(), infra.S3ConfigFrom(e.cfg))
			if err != nil {
				return err
			}
			objs, err := s3Store.List(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			if len(objs) == 0 {
				fmt.Fprintln(e.out, "(no archived exports)")
				return nil
			}

			tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tSIZE\tMODIFIED")
			for _, o := range objs {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", o.Key, o.Size, o.LastModified.UTC().Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
	ls.Flags().StringVar(&prefix, "prefix", "exports/", "key prefix to list")
	c.AddCommand(ls)

	return c
}
