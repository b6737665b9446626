package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"strconv"

	"PencilBoard/internal/board"
	"PencilBoard/internal/canvas"
	"PencilBoard/internal/document"
	"PencilBoard/internal/export"
	pbnet "PencilBoard/internal/net"
	"PencilBoard/internal/pen"
	"PencilBoard/internal/state"
	"PencilBoard/internal/ui"
)

var (
	serve     = flag.String("serve", "", "serve WebSocket clients on this address, e.g. :8888")
	advertise = flag.Bool("mdns", false, "advertise the WebSocket server on the LAN")
	find      = flag.Bool("find", false, "list boards advertised on the LAN and exit")
	docPath   = flag.String("doc", "", "document file to open")
	pdfPath   = flag.String("pdf", "", "export the document as PDF to this file and exit")
	pngDir    = flag.String("png", "", "export every surface as PNG into this directory and exit")
	verbose   = flag.Bool("v", false, "log drawing engine events to stderr")

	interp    = flag.String("interpolation", "bezier", "redraw interpolation: bezier, line or mixed")
	bezCtrl   = flag.Float64("bezctrl", pen.DefaultControlFraction, "Bezier control point fraction")
	minDist   = flag.Float64("mindist", pen.DefaultMinDist2, "squared distance filter in px²")
	width     = flag.Float64("width", 400, "width of inserted surfaces")
	height    = flag.Float64("height", 300, "height of inserted surfaces")
	position  = flag.String("position", "center", "anchor of inserted surfaces: left, center or right")
	hasBorder = flag.Bool("border", true, "draw a border around inserted surfaces")
)

func main() {
	flag.Parse()

	if *verbose {
		l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		board.SetLogger(l)
		canvas.SetLogger(l)
	}

	if *find {
		runFind()
		return
	}

	defaults := surfaceDefaults()
	opts := boardOptions()

	switch {
	case *pdfPath != "" || *pngDir != "":
		runExport(opts)
	case *serve != "":
		runServer(defaults, opts)
	default:
		runDesktop(defaults, opts)
	}
}

func surfaceDefaults() document.Config {
	anchor, ok := state.ParseAnchor(*position)
	if !ok {
		log.Printf("Unknown position %q, using left", *position)
	}
	return document.Config{Width: *width, Height: *height, Anchor: anchor, Border: *hasBorder}
}

func boardOptions() []board.Option {
	i, err := pen.ParseInterpolation(*interp)
	if err != nil {
		log.Printf("%v, using bezier", err)
	}
	return []board.Option{
		board.WithInterpolation(i),
		board.WithControlFraction(*bezCtrl),
		board.WithMinDistance(*minDist),
	}
}

// loadDocument fills store from -doc. A missing file is an empty document.
func loadDocument(store *document.Store) error {
	if *docPath == "" {
		return nil
	}
	f, err := os.Open(*docPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	n, err := store.Load(f)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d surfaces from %s", n, *docPath)
	return nil
}

func saveDocument(store *document.Store) {
	if *docPath == "" {
		return
	}
	f, err := os.Create(*docPath)
	if err != nil {
		log.Printf("Could not save %s: %v", *docPath, err)
		return
	}
	defer f.Close()
	if err := store.Save(f); err != nil {
		log.Printf("Could not save %s: %v", *docPath, err)
		return
	}
	log.Printf("Saved %s", *docPath)
}

func runExport(opts []board.Option) {
	store := document.NewStore(nil)
	if err := loadDocument(store); err != nil {
		log.Fatalf("Failed to load document: %v", err)
	}
	renderer := board.New(store, opts...).Renderer()
	surfaces := store.Surfaces()

	if *pdfPath != "" {
		if err := export.PDFFile(*pdfPath, surfaces, export.Options{Renderer: renderer, Compress: true}); err != nil {
			log.Fatalf("Failed to export PDF: %v", err)
		}
		log.Printf("Wrote %s", *pdfPath)
	}
	if *pngDir != "" {
		names, err := export.PNGDir(*pngDir, surfaces, renderer)
		for _, n := range names {
			log.Printf("Wrote %s", n)
		}
		if err != nil {
			log.Fatalf("Failed to export PNG: %v", err)
		}
	}
}

func runServer(defaults document.Config, opts []board.Option) {
	log.Println("Starting as SERVER")
	srv := pbnet.NewServer(defaults, opts...)
	srv.Seed = loadDocument

	if *advertise {
		port, err := listenPort(*serve)
		if err != nil {
			log.Fatalf("Cannot advertise %s: %v", *serve, err)
		}
		seeded := document.NewStore(nil)
		if err := loadDocument(seeded); err != nil {
			log.Fatalf("Failed to load document: %v", err)
		}
		mdnsServer, err := pbnet.Advertise(port, len(seeded.IDs()))
		if err != nil {
			log.Fatalf("Failed to advertise: %v", err)
		}
		defer mdnsServer.Shutdown()
		log.Printf("Advertising %s", pbnet.WebSocketURL(pbnet.GetOutgoingIP(), port, "/ws"))
	}
	if err := srv.ListenAndServe(*serve); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func listenPort(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(p)
}

func runFind() {
	err := pbnet.Browse(func(url string) {
		fmt.Println(url)
	})
	if err != nil {
		log.Fatalf("Lookup failed: %v", err)
	}
}

func runDesktop(defaults document.Config, opts []board.Option) {
	log.Println("Starting as DESKTOP")
	store := document.NewStore(canvas.Factory)
	if err := loadDocument(store); err != nil {
		log.Printf("Could not load %s: %v", *docPath, err)
	}
	if len(store.IDs()) == 0 {
		store.Insert(defaults)
	}
	b := ui.NewBoardWidget(store, opts...)
	ui.RunApp(b, defaults)
	saveDocument(store)
}
