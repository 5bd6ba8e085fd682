package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fasterr/marketplace/internal/ai"
	"github.com/fasterr/marketplace/internal/domain"
	"github.com/fasterr/marketplace/internal/featureflags"
	"github.com/fasterr/marketplace/internal/infrastructure/logger"
	"github.com/fasterr/marketplace/internal/repository"
	"github.com/fasterr/marketplace/internal/service"
	"github.com/fasterr/marketplace/internal/store"
	"github.com/fasterr/marketplace/internal/worker"
	"github.com/fasterr/marketplace/pkg/cache"
	"github.com/fasterr/marketplace/pkg/config"
)

// engine bundles the local marketplace services the CLI drives
type engine struct {
	cfg           *config.Config
	catalog       *repository.StoreCatalog
	catalogSvc    *service.CatalogService
	sessions      *service.SessionService
	suggester     *service.Suggester
	reputation    *service.ReputationService
	conversations *service.Conversations
	scheduler     *worker.ReplyScheduler
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	eng, err := newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer eng.scheduler.Stop()

	switch command {
	case "seed":
		seedCatalog(eng, args)
	case "browse":
		browseCatalog(eng, args)
	case "show":
		showProduct(eng, args)
	case "suggest":
		suggestTitles(eng, args)
	case "sell":
		sellItem(eng, args)
	case "sold":
		markSold(eng, args)
	case "favorite":
		toggleFavorite(eng, args)
	case "favorites":
		listFavorites(eng)
	case "login":
		login(eng, args)
	case "logout":
		logout(eng)
	case "whoami":
		whoAmI(eng)
	case "chat":
		handleChat(eng, args)
	case "reviews":
		handleReviews(eng, args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func newEngine() (*engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewLogger("warn", cfg.Environment)
	slog.SetDefault(log)

	kv, err := store.NewFileStore(cfg.StorePath, cfg.StoreQuotaBytes, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	catalogRepo := repository.NewStoreCatalog(kv, log)
	favoriteRepo := repository.NewStoreFavorites(kv, log)
	reviewRepo := repository.NewStoreReviews(kv, log)
	chatRepo := repository.NewStoreChats(kv, log)
	sessionRepo := repository.NewStoreSession(kv, log)

	genClient := ai.NewClient(ai.Config{
		Endpoint: cfg.GenAIEndpoint,
		APIKey:   cfg.GenAIKey,
		Model:    cfg.GenAIModel,
	}, log)
	appCache := cache.New()

	scheduler := worker.NewReplyScheduler(log)
	conversations := service.NewConversations(chatRepo, catalogRepo, scheduler, service.ConversationConfig{
		ReplyDelay:       cfg.ReplyDelay,
		NotificationTTL:  cfg.NotificationTTL,
		DisableAutoReply: featureflags.Enabled(featureflags.DisableAutoReply),
	}, log)

	return &engine{
		cfg:           cfg,
		catalog:       catalogRepo,
		catalogSvc:    service.NewCatalogService(catalogRepo, favoriteRepo, genClient, log),
		sessions:      service.NewSessionService(sessionRepo, log),
		suggester:     service.NewSuggester(catalogRepo, appCache, 30*time.Second),
		reputation:    service.NewReputationService(catalogRepo, reviewRepo, appCache, log),
		conversations: conversations,
		scheduler:     scheduler,
	}, nil
}

func seedCatalog(eng *engine, args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	count := fs.Int("count", eng.cfg.SeedCount, "number of generated products")
	force := fs.Bool("force", false, "reseed even if products exist")
	fs.Parse(args)

	if err := eng.catalog.EnsureSeeded(*count, *force); err != nil {
		fatal(err)
	}
	products, err := eng.catalog.List()
	if err != nil {
		fatal(err)
	}
	fmt.Printf("catalog ready: %d products\n", len(products))
}

func browseCatalog(eng *engine, args []string) {
	fs := flag.NewFlagSet("browse", flag.ExitOnError)
	f := service.DefaultFilter()
	fs.StringVar(&f.Text, "q", f.Text, "text query over titles and descriptions")
	fs.StringVar(&f.Category, "category", f.Category, "category filter")
	fs.StringVar(&f.MinPrice, "min", f.MinPrice, "minimum price")
	fs.StringVar(&f.MaxPrice, "max", f.MaxPrice, "maximum price")
	fs.StringVar(&f.Condition, "condition", f.Condition, "condition filter")
	fs.StringVar(&f.Location, "location", f.Location, "location filter")
	fs.StringVar(&f.Sort, "sort", f.Sort, "sort order: date_desc, price_asc, price_desc")
	limit := fs.Int("limit", 20, "maximum rows to print")
	fs.Parse(args)

	products, err := eng.catalogSvc.Browse(f)
	if err != nil {
		fatal(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tCATEGORY\tCONDITION\tLOCATION")
	for i, p := range products {
		if i >= *limit {
			break
		}
		fmt.Fprintf(w, "%s\t%s\t%.0f\t%s\t%s\t%s\n", p.ID, p.Title, p.Price, p.Category, p.Condition, p.Location)
	}
	w.Flush()
	fmt.Printf("%d products\n", len(products))
}

func showProduct(eng *engine, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: fasterr show <product-id>")
		os.Exit(1)
	}
	p, err := eng.catalogSvc.Get(args[0])
	if err != nil {
		fatal(err)
	}

	fmt.Printf("%s\n", p.Title)
	fmt.Printf("  id:         %s\n", p.ID)
	fmt.Printf("  price:      %.0f\n", p.Price)
	fmt.Printf("  category:   %s\n", p.Category)
	fmt.Printf("  condition:  %s\n", p.Condition)
	fmt.Printf("  location:   %s\n", p.Location)
	fmt.Printf("  seller:     %s (%s)\n", p.SellerName, p.SellerID)
	fmt.Printf("  status:     %s\n", p.Status)
	fmt.Printf("  listed:     %s\n", p.CreatedTime().Format(time.RFC822))
	fmt.Printf("  %s\n", p.Description)
}

func suggestTitles(eng *engine, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: fasterr suggest <prefix>")
		os.Exit(1)
	}
	suggestions, err := eng.suggester.Suggest(args[0])
	if err != nil {
		fatal(err)
	}
	for _, s := range suggestions {
		fmt.Println(s)
	}
}

func sellItem(eng *engine, args []string) {
	fs := flag.NewFlagSet("sell", flag.ExitOnError)
	title := fs.String("title", "", "listing title")
	price := fs.Float64("price", 0, "asking price")
	description := fs.String("description", "", "listing description (generated from features when empty)")
	features := fs.String("features", "", "feature notes for description generation")
	category := fs.String("category", string(domain.CategoryOther), "category")
	condition := fs.String("condition", string(domain.ConditionGood), "condition")
	image := fs.String("image", "", "image URL")
	location := fs.String("location", "", "pickup location")
	fs.Parse(args)

	if *title == "" || *image == "" {
		fmt.Fprintln(os.Stderr, "title and image are required")
		os.Exit(1)
	}

	actor := mustLogin(eng)
	p, err := eng.catalogSvc.CreateListing(context.Background(), actor, service.ListingInput{
		Title:       *title,
		Price:       *price,
		Description: *description,
		Features:    *features,
		Category:    domain.Category(*category),
		Condition:   domain.Condition(*condition),
		Images:      []string{*image},
		Location:    *location,
	})
	if err != nil {
		fatal(err)
	}
	fmt.Printf("listed %s as %s\n", p.Title, p.ID)
}

func markSold(eng *engine, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: fasterr sold <product-id>")
		os.Exit(1)
	}
	actor := mustLogin(eng)
	if err := eng.catalogSvc.MarkSold(actor, args[0]); err != nil {
		fatal(err)
	}
	fmt.Printf("marked %s as sold\n", args[0])
}

func toggleFavorite(eng *engine, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: fasterr favorite <product-id>")
		os.Exit(1)
	}
	favorited, err := eng.catalogSvc.ToggleFavorite(args[0])
	if err != nil {
		fatal(err)
	}
	if favorited {
		fmt.Printf("favorited %s\n", args[0])
	} else {
		fmt.Printf("unfavorited %s\n", args[0])
	}
}

func listFavorites(eng *engine) {
	products, err := eng.catalogSvc.FavoriteProducts()
	if err != nil {
		fatal(err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tSTATUS")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%.0f\t%s\n", p.ID, p.Title, p.Price, p.Status)
	}
	w.Flush()
}

func login(eng *engine, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	fs.Parse(args)

	if *name == "" {
		fmt.Fprintln(os.Stderr, "Usage: fasterr login -name <display name>")
		os.Exit(1)
	}
	user, err := eng.sessions.Login(*name)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("logged in as %s <%s>\n", user.Name, user.Email)
}

func logout(eng *engine) {
	if err := eng.sessions.Logout(); err != nil {
		fatal(err)
	}
	fmt.Println("logged out")
}

func whoAmI(eng *engine) {
	user, err := eng.sessions.Current()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			fmt.Println("browsing as guest")
			return
		}
		fatal(err)
	}
	fmt.Printf("%s <%s> (%s)\n", user.Name, user.Email, user.ID)
}

func handleChat(eng *engine, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: fasterr chat <send|history> ...")
		os.Exit(1)
	}
	switch args[0] {
	case "send":
		chatSend(eng, args[1:])
	case "history":
		chatHistory(eng, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown chat command: %s\n", args[0])
		os.Exit(1)
	}
}

func chatSend(eng *engine, args []string) {
	fs := flag.NewFlagSet("chat send", flag.ExitOnError)
	product := fs.String("product", "", "product id")
	text := fs.String("text", "", "message text")
	wait := fs.Bool("wait", true, "wait for the seller reply before exiting")
	fs.Parse(args)

	if *product == "" || *text == "" {
		fmt.Fprintln(os.Stderr, "Usage: fasterr chat send -product <id> -text <message>")
		os.Exit(1)
	}

	actor := mustLogin(eng)
	msg, err := eng.conversations.Send(actor.ID, *product, service.Content{Text: *text})
	if err != nil {
		fatal(err)
	}
	fmt.Printf("sent %s\n", msg.ID)

	// The simulated reply lands after the configured delay; without the
	// wait it would be lost when the process exits.
	if *wait {
		time.Sleep(eng.cfg.ReplyDelay + 500*time.Millisecond)
		chatHistory(eng, []string{*product})
	}
}

func chatHistory(eng *engine, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: fasterr chat history <product-id>")
		os.Exit(1)
	}
	messages, err := eng.conversations.History(args[0])
	if err != nil {
		fatal(err)
	}
	for _, m := range messages {
		when := time.UnixMilli(m.CreatedAt).Format("15:04:05")
		fmt.Printf("[%s] %s: %s\n", when, m.SenderID, m.Text)
	}
}

func handleReviews(eng *engine, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: fasterr reviews <add|stats|list> ...")
		os.Exit(1)
	}
	switch args[0] {
	case "add":
		reviewAdd(eng, args[1:])
	case "stats":
		reviewStats(eng, args[1:])
	case "list":
		reviewList(eng, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown reviews command: %s\n", args[0])
		os.Exit(1)
	}
}

func reviewAdd(eng *engine, args []string) {
	fs := flag.NewFlagSet("reviews add", flag.ExitOnError)
	seller := fs.String("seller", "", "seller id")
	rating := fs.Int("rating", 5, "rating 1-5")
	comment := fs.String("comment", "", "review comment")
	fs.Parse(args)

	if *seller == "" {
		fmt.Fprintln(os.Stderr, "Usage: fasterr reviews add -seller <id> -rating <1-5> [-comment ...]")
		os.Exit(1)
	}

	actor := mustLogin(eng)
	review, err := eng.reputation.AddReview(actor, *seller, *rating, *comment)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("review %s recorded\n", review.ID)
}

func reviewStats(eng *engine, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: fasterr reviews stats <seller-id>")
		os.Exit(1)
	}
	stats, err := eng.reputation.Stats(args[0])
	if err != nil {
		fatal(err)
	}
	fmt.Printf("listings: %d\nrating:   %s (%d reviews)\n", stats.TotalListings, stats.AverageRating, stats.ReviewCount)
}

func reviewList(eng *engine, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: fasterr reviews list <seller-id>")
		os.Exit(1)
	}
	reviews, err := eng.reputation.Reviews(args[0])
	if err != nil {
		fatal(err)
	}
	for _, r := range reviews {
		when := time.UnixMilli(r.CreatedAt).Format("2006-01-02")
		fmt.Printf("[%s] %d/5 %s: %s\n", when, r.Rating, r.BuyerName, r.Comment)
	}
}

func mustLogin(eng *engine) domain.User {
	user, err := eng.sessions.Current()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			fmt.Fprintln(os.Stderr, "login required: fasterr login -name <display name>")
			os.Exit(1)
		}
		fatal(err)
	}
	return user
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println(`fasterr - local marketplace

Usage:
  fasterr seed [-count n] [-force]
  fasterr browse [-q text] [-category c] [-min p] [-max p] [-condition c] [-location l] [-sort order]
  fasterr show <product-id>
  fasterr suggest <prefix>
  fasterr sell -title t -price p -image url [-category c] [-condition c] [-features f] [-location l]
  fasterr sold <product-id>
  fasterr favorite <product-id>
  fasterr favorites
  fasterr login -name <display name>
  fasterr logout
  fasterr whoami
  fasterr chat send -product <id> -text <message> [-wait=false]
  fasterr chat history <product-id>
  fasterr reviews add -seller <id> -rating <1-5> [-comment ...]
  fasterr reviews stats <seller-id>
  fasterr reviews list <seller-id>`)
}
