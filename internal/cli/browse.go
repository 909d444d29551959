package cli

import (
	"io"
	"os"

	"github.com/danfragoso/orpheus/internal/browser"
	"github.com/danfragoso/orpheus/internal/library"
	"github.com/danfragoso/orpheus/internal/source"
	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// browseLibrary is loadLibrary that tolerates a missing cache, so the
// folder source works before the first scan.
func (e *env) browseLibrary() (*library.Library, error) {
	lib, err := library.Load(e.cfg.LibraryPath())
	if err == nil {
		return lib, nil
	}
	if os.IsNotExist(errors.Cause(err)) {
		e.logger.Warn("no library cache, library source is empty", zap.String("path", e.cfg.LibraryPath()))
		return library.New(), nil
	}
	return nil, err
}

func (e *env) browser(filter string) (*browser.Browser, error) {
	lib, err := e.browseLibrary()
	if err != nil {
		return nil, err
	}
	reg, err := e.registry(lib, filter)
	if err != nil {
		return nil, err
	}
	return e.browserFor(reg), nil
}

func (e *env) browserFor(reg *source.Registry) *browser.Browser {
	return browser.New(reg, e.cfg.CacheEntries, e.logger.Named("browser"))
}

func newTable(w io.Writer, header ...interface{}) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row(header))
	return t
}

func newSourcesCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the content sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := e.browseLibrary()
			if err != nil {
				return err
			}
			reg, err := e.registry(lib, "")
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout(), "ID", "NAME")
			for _, s := range reg.List() {
				t.AppendRow(table.Row{s.ID(), s.Name()})
			}
			t.Render()
			return nil
		},
	}
}

func newBrowseCommand(e *env) *cobra.Command {
	var (
		token  string
		filter string
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "browse [source] [parent]",
		Short: "Browse a content source page by page",
		Long: `Browse lists the children of a container of a content source. Without
arguments it lists the root of the last browsed source. Results are served in
pages of --page-size items; pass the printed token with --token to get the
next page. --filter keeps the items whose title or info contains the given
text; pass the same filter along with --token.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceID, parentID := e.settings.LastSource, ""
			if len(args) > 0 {
				sourceID = args[0]
			}
			if len(args) > 1 {
				parentID = args[1]
			}

			b, err := e.browser(filter)
			if err != nil {
				return err
			}

			var (
				items []source.Item
				next  string
			)
			switch {
			case all:
				items, err = b.All(cmd.Context(), sourceID, parentID, e.cfg.PageSize)
			case token != "":
				var p browser.Page
				p, err = b.Resume(cmd.Context(), sourceID, parentID, token, e.cfg.PageSize)
				items, next = p.Items, p.Token
			default:
				var p browser.Page
				p, err = b.Browse(cmd.Context(), sourceID, parentID, e.cfg.PageSize)
				items, next = p.Items, p.Token
			}
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "KIND", "ID", "TITLE", "INFO")
			for _, it := range items {
				t.AppendRow(table.Row{it.Kind, it.ID, it.Title, it.Subtitle})
			}
			t.Render()
			if next != "" {
				fprintf(cmd.OutOrStdout(), "next page: --token %s\n", next)
			}

			if sourceID != e.settings.LastSource {
				e.settings.LastSource = sourceID
				if err := e.settings.Save(e.cfg.SettingsPath()); err != nil {
					e.logger.Warn("could not save settings", zap.Error(err))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Continuation token printed by the previous page.")
	cmd.Flags().StringVar(&filter, "filter", "", "Only list items matching this text.")
	cmd.Flags().BoolVar(&all, "all", false, "Print every page.")
	return cmd
}
