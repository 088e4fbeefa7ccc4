package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/paging"
	"github.com/mmcdole/reel/internal/prefs"
	"github.com/mmcdole/reel/internal/resource"
	"github.com/mmcdole/reel/internal/tui/styles"
)

func parseMediaArg(args []string, cmd string) (domain.MediaType, []string, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("usage: reel %s <movie|tv> ...", cmd)
	}
	mt, err := domain.ParseMediaType(args[0])
	if err != nil {
		return "", nil, err
	}
	return mt, args[1:], nil
}

func parseIDArg(args []string, cmd string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: reel %s <movie|tv> <id>", cmd)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func (a *app) cmdList(ctx context.Context, args []string) error {
	mt, rest, err := parseMediaArg(args, "list")
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return fmt.Errorf("usage: reel list %s <category> [-pages N] [-genre ID] [-refresh]", mt)
	}
	cat := domain.Category(rest[0])
	if !domain.ValidCategory(mt, cat) {
		return fmt.Errorf("%q is not a %s category", rest[0], mt)
	}

	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	pages := fs.Int("pages", 1, "number of pages to load")
	genre := fs.Int("genre", 0, "genre id (discover only)")
	refresh := fs.Bool("refresh", false, "ignore the cache freshness window")
	if err := fs.Parse(rest[1:]); err != nil {
		return err
	}

	if *genre > 0 {
		if cat != domain.CategoryDiscover {
			return fmt.Errorf("-genre only applies to the discover category")
		}
		if err := a.prefs.SetString(prefs.KeyGenre, strconv.Itoa(*genre)); err != nil {
			a.logger.Warn("failed to save genre", "error", err)
		}
	} else if cat == domain.CategoryDiscover {
		// A genre picked earlier sticks to discover
		if s, ok := a.prefs.GetString(prefs.KeyGenre); ok {
			*genre, _ = strconv.Atoi(s)
		}
	}

	return a.printList(ctx, mt, cat, *pages, *genre, *refresh)
}

// printList prints a list. One page goes through the cached feed; more pages
// go through the pager so the cache keeps its page keys.
func (a *app) printList(ctx context.Context, mt domain.MediaType, cat domain.Category, pages, genre int, refresh bool) error {
	if genre > 0 {
		p := a.catalog.ByGenre(mt, genre)
		err := loadPages(ctx, p, pages)
		printContents(os.Stdout, p.Items())
		return err
	}

	if pages <= 1 {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		stream := a.catalog.Feed(ctx, mt, cat)
		if refresh {
			stream = a.catalog.ReloadFeed(ctx, mt, cat)
		}
		res := resource.Await(ctx, stream)
		printContents(os.Stdout, res.Data)
		return staleWarning(res.Err, len(res.Data) > 0)
	}

	p := a.catalog.Pager(mt, cat)
	err := loadPages(ctx, p, pages)
	printContents(os.Stdout, p.Items())
	return staleWarning(err, p.Len() > 0)
}

// loadPages refreshes p and appends until n pages are loaded or the list ends
func loadPages(ctx context.Context, p *paging.Pager[domain.Content], n int) error {
	if err := p.Refresh(ctx); err != nil {
		return err
	}
	for i := 1; i < n && !p.Status().Append.EndReached; i++ {
		if err := p.LoadMore(ctx); err != nil {
			return err
		}
	}
	return nil
}

// staleWarning reports a refresh failure on stderr when cached rows were still printed
func staleWarning(err error, printed bool) error {
	if err == nil {
		return nil
	}
	if printed && domain.Classify(err) == domain.KindTransport {
		fmt.Fprintf(os.Stderr, "warning: showing cached results: %v\n", err)
		return nil
	}
	return err
}

func (a *app) cmdSearch(ctx context.Context, args []string) error {
	mt, rest, err := parseMediaArg(args, "search")
	if err != nil {
		return err
	}
	query := strings.TrimSpace(strings.Join(rest, " "))
	if query == "" {
		return fmt.Errorf("usage: reel search %s <query>", mt)
	}

	p := a.catalog.Search(mt, query)
	err = p.Refresh(ctx)
	if err == nil {
		printContents(os.Stdout, p.Items())
		return nil
	}
	if domain.Classify(err) != domain.KindTransport {
		return err
	}

	fmt.Fprintf(os.Stderr, "warning: offline, searching cached titles: %v\n", err)
	items, err := a.catalog.SearchOffline(ctx, mt, query)
	if err != nil {
		return err
	}
	printContents(os.Stdout, items)
	return nil
}

func (a *app) cmdDetails(ctx context.Context, args []string) error {
	mt, rest, err := parseMediaArg(args, "details")
	if err != nil {
		return err
	}
	id, err := parseIDArg(rest, "details")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	res := resource.Await(ctx, a.catalog.Details(ctx, mt, id))
	if res.Data == nil {
		if res.Err == nil {
			return domain.ErrNotFound
		}
		return res.Err
	}
	if res.Err != nil {
		fmt.Fprintf(os.Stderr, "warning: showing details cached %s: %v\n",
			res.Data.FetchedAt.Format("2006-01-02 15:04"), res.Err)
	}

	genres := make([]string, 0, len(res.Data.Genres))
	for _, g := range res.Data.Genres {
		genres = append(genres, g.Name)
	}
	wished, err := a.wishlist.Contains(ctx, mt, id)
	if err != nil {
		return err
	}
	printDetails(os.Stdout, res.Data, genres, wished, a.cfg.TMDB.ImageBaseURL)
	return nil
}

func printDetails(w io.Writer, d *domain.Details, genres []string, wished bool, imageBase string) {
	title := d.Title
	if year := d.Year(); year > 0 {
		title = fmt.Sprintf("%s (%d)", title, year)
	}
	if wished {
		title += " ♥"
	}
	fmt.Fprintln(w, title)
	if d.Tagline != "" {
		fmt.Fprintln(w, d.Tagline)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(tw, "%s\t%s\n", name, value)
		}
	}
	field("Genres", strings.Join(genres, ", "))
	field("Runtime", d.FormattedRuntime())
	if d.VoteCount > 0 {
		field("Rating", fmt.Sprintf("%.1f (%d votes)", d.VoteAverage, d.VoteCount))
	}
	field("Status", d.Status)
	if d.NumberOfSeasons > 0 {
		field("Seasons", fmt.Sprintf("%d (%d episodes)", d.NumberOfSeasons, d.NumberOfEpisodes))
	}
	field("Homepage", d.Homepage)
	field("Poster", d.PosterURL(imageBase, "w500"))
	tw.Flush()

	if d.Overview != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, d.Overview)
	}
}

func (a *app) cmdGenres(ctx context.Context, args []string) error {
	mt, _, err := parseMediaArg(args, "genres")
	if err != nil {
		return err
	}
	genres, err := a.catalog.Genres(ctx, mt)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, g := range genres {
		fmt.Fprintf(tw, "%d\t%s\n", g.ID, g.Name)
	}
	return tw.Flush()
}

func (a *app) cmdWishlist(ctx context.Context, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "add", "rm":
			return a.cmdWishlistEdit(ctx, args[0], args[1:])
		case "find":
			query := strings.Join(args[1:], " ")
			entries, err := a.wishlist.Filter(ctx, "", query)
			if err != nil {
				return err
			}
			printWishlist(os.Stdout, entries)
			return nil
		}
	}

	var mt domain.MediaType
	if len(args) > 0 {
		parsed, err := domain.ParseMediaType(args[0])
		if err != nil {
			return err
		}
		mt = parsed
	}
	entries, err := a.wishlist.List(ctx, mt)
	if err != nil {
		return err
	}
	printWishlist(os.Stdout, entries)
	return nil
}

func (a *app) cmdWishlistEdit(ctx context.Context, action string, args []string) error {
	mt, rest, err := parseMediaArg(args, "wishlist "+action)
	if err != nil {
		return err
	}
	id, err := parseIDArg(rest, "wishlist "+action)
	if err != nil {
		return err
	}

	if action == "rm" {
		return a.wishlist.Remove(ctx, mt, id)
	}

	// Adding snapshots the title, so resolve it through the details cache
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	res := resource.Await(ctx, a.catalog.Details(ctx, mt, id))
	if res.Data == nil {
		if res.Err == nil {
			return domain.ErrNotFound
		}
		return res.Err
	}
	if err := a.wishlist.Add(ctx, res.Data.Content); err != nil {
		return err
	}
	fmt.Printf("Added %s\n", res.Data.Title)
	return nil
}

func printWishlist(w io.Writer, entries []domain.WishlistEntry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tID\tTITLE\tRATING\tADDED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%.1f\t%s\n",
			e.MediaType, e.ID, e.Title, e.VoteAverage, e.AddedAt.Format("2006-01-02"))
	}
	tw.Flush()
}

func printContents(w io.Writer, items []domain.Content) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tYEAR\tRATING")
	for _, c := range items {
		year := ""
		if y := c.Year(); y > 0 {
			year = strconv.Itoa(y)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\n", c.ID, c.Title, year, c.VoteAverage)
	}
	tw.Flush()
}

func (a *app) cmdSync(ctx context.Context, args []string) error {
	var types []domain.MediaType
	if len(args) > 0 {
		mt, err := domain.ParseMediaType(args[0])
		if err != nil {
			return err
		}
		types = append(types, mt)
	}

	var progress domain.ProgressFunc
	if term.IsTerminal(int(os.Stderr.Fd())) {
		progress = func(done, total int) {
			fmt.Fprintf(os.Stderr, "\r%s Syncing %d/%d", styles.SpinnerFrames[done%len(styles.SpinnerFrames)], done, total)
		}
	}
	results := a.catalog.SyncAllWithProgress(ctx, progress, types...)
	if progress != nil {
		fmt.Fprint(os.Stderr, clearSpinnerLine)
	}

	var errs []error
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, r := range results {
		status := fmt.Sprintf("%d items", r.Count)
		if r.Err != nil {
			status = "failed: " + r.Err.Error()
			errs = append(errs, fmt.Errorf("%s/%s: %w", r.MediaType, r.Category, r.Err))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.MediaType, r.Category.Label(), status)
	}
	tw.Flush()

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d lists failed: %w", len(errs), len(results), errors.Join(errs...))
	}
	return nil
}

func (a *app) cmdClearCache(ctx context.Context, args []string) error {
	if len(args) > 0 {
		mt, rest, err := parseMediaArg(args, "clear-cache")
		if err != nil {
			return err
		}
		if len(rest) != 1 || !domain.ValidCategory(mt, domain.Category(rest[0])) {
			return fmt.Errorf("usage: reel clear-cache %s <category>", mt)
		}
		if err := a.catalog.ClearList(ctx, mt, domain.Category(rest[0])); err != nil {
			return err
		}
		fmt.Printf("Cleared %s %s.\n", mt.Label(), domain.Category(rest[0]).Label())
		return nil
	}

	if err := a.catalog.ClearCache(ctx); err != nil {
		return err
	}
	fmt.Println("Cache cleared; wishlist kept.")
	return nil
}

func (a *app) cmdAdult(args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return fmt.Errorf("usage: reel adult <on|off>")
	}
	return a.prefs.SetBool(prefs.KeyAdult, args[0] == "on")
}
