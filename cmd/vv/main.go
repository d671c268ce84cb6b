// Command vv is the CLI around the versionvault core: content-addressed
// object storage plus file diffing.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"versionvault/internal/config"
	"versionvault/internal/diff"
	"versionvault/internal/fileobj"
	"versionvault/internal/journal"
	"versionvault/internal/logging"
	"versionvault/internal/store"
	"versionvault/internal/tracker"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "vv",
	Short: "VersionVault is a content-addressed snapshot and diff tool",
	Long: `VersionVault stores file content deduplicated by SHA-256 hash and
compares file snapshots with line-level diffs and similarity scoring.`,
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

func openStore(cfg *config.Config) (*store.ObjectStore, error) {
	return store.New(cfg.Store.Root, store.Options{CacheSize: cfg.Store.CacheSize})
}

func openDB(cfg *config.Config) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.Database.Path)
	opts.Logger = nil
	return badger.Open(opts)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize a VersionVault working directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := os.MkdirAll(cfg.Store.Root, 0755); err != nil {
				return fmt.Errorf("creating object directory: %w", err)
			}
			if err := os.MkdirAll(cfg.Database.Path, 0755); err != nil {
				return fmt.Errorf("creating database directory: %w", err)
			}
			fmt.Println("Initialized VersionVault working directory in .vv")
			return nil
		},
	}

	var storeCmd = &cobra.Command{
		Use:   "store [files...]",
		Short: "Store file content in the object store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("opening object store: %w", err)
			}

			for _, path := range args {
				hash, err := st.StoreObject(fileobj.New(path))
				if err != nil {
					return fmt.Errorf("storing %s: %w", path, err)
				}
				fmt.Printf("%s  %s\n", hash, path)
			}
			return nil
		},
	}

	var catCmd = &cobra.Command{
		Use:   "cat <hash>",
		Short: "Print stored content by hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("opening object store: %w", err)
			}

			f, found, err := st.RetrieveObject(args[0])
			if err != nil {
				return fmt.Errorf("retrieving object: %w", err)
			}
			if !found {
				return fmt.Errorf("object not found: %s", args[0])
			}

			// Retrieved content lives in memory; the origin path may no
			// longer exist, so read the variant's content directly.
			switch c := f.(type) {
			case *fileobj.BinaryFile:
				_, err := os.Stdout.Write(c.Data())
				return err
			case *fileobj.TextFile:
				lines, err := c.Lines()
				if err != nil {
					return fmt.Errorf("reading content: %w", err)
				}
				for _, line := range lines {
					fmt.Println(line)
				}
			}
			return nil
		},
	}

	var hasCmd = &cobra.Command{
		Use:   "has <hash>",
		Short: "Check whether an object exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("opening object store: %w", err)
			}

			if st.HasObject(args[0]) {
				fmt.Println("present")
				return nil
			}
			fmt.Println("absent")
			return nil
		},
	}

	var useUnified bool
	var diffCmd = &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two files and show a line diff",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := diff.NewEngine()
			if useUnified {
				engine.SetAlgorithm(diff.UnifiedDiff{})
			}

			oldFile := fileobj.New(args[0])
			newFile := fileobj.New(args[1])

			change, err := engine.CompareFiles(oldFile, newFile)
			if err != nil {
				return fmt.Errorf("comparing files: %w", err)
			}
			fmt.Printf("%s: %s\n", change.Type, change.Path)

			oldText, okOld := oldFile.(*fileobj.TextFile)
			newText, okNew := newFile.(*fileobj.TextFile)
			if !okOld || !okNew {
				fmt.Println("binary content, no line diff")
				return nil
			}

			lines, err := engine.GenerateLineDiff(oldText, newText)
			if err != nil {
				return fmt.Errorf("generating diff: %w", err)
			}
			printColoredDiff(lines)
			return nil
		},
	}
	diffCmd.Flags().BoolVar(&useUnified, "unified", false, "use the minimal-edit diff algorithm")

	var threshold float64
	var similarCmd = &cobra.Command{
		Use:   "similar <a> <b>",
		Short: "Check whether two text files are similar",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := diff.NewEngine()
			a := fileobj.NewTextFile(args[0])
			b := fileobj.NewTextFile(args[1])

			similar, err := engine.AreFilesSimilar(a, b, threshold)
			if err != nil {
				return fmt.Errorf("scoring similarity: %w", err)
			}
			if similar {
				fmt.Println("similar")
			} else {
				fmt.Println("different")
			}
			return nil
		},
	}
	similarCmd.Flags().Float64Var(&threshold, "threshold", diff.DefaultSimilarityThreshold, "similarity threshold in [0,1]")

	var logCmd = &cobra.Command{
		Use:   "log <path>",
		Short: "Show recorded change history for a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			entries, err := journal.New(db).History(args[0])
			if err != nil {
				return fmt.Errorf("reading history: %w", err)
			}
			for _, e := range entries {
				fmt.Printf("%s  %-9s  %s -> %s\n",
					e.RecordedAt.Format("2006-01-02 15:04:05"),
					e.Change.Type, shortHash(e.Change.OldHash), shortHash(e.Change.NewHash))
			}
			return nil
		},
	}

	var sizeCmd = &cobra.Command{
		Use:   "size",
		Short: "Report total persisted storage size",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("opening object store: %w", err)
			}

			total, err := st.StorageSize()
			if err != nil {
				return fmt.Errorf("computing storage size: %w", err)
			}
			fmt.Printf("%d bytes\n", total)
			return nil
		},
	}

	var maxAgeDays int
	var cleanupCmd = &cobra.Command{
		Use:   "cleanup",
		Short: "Remove objects older than the retention threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("opening object store: %w", err)
			}

			if err := st.Cleanup(maxAgeDays); err != nil {
				return fmt.Errorf("cleaning up: %w", err)
			}
			fmt.Println("Cleanup complete")
			return nil
		},
	}
	cleanupCmd.Flags().IntVar(&maxAgeDays, "days", 30, "remove objects older than this many days")

	var compressCmd = &cobra.Command{
		Use:   "compress <hash>",
		Short: "Compress a stored object in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("opening object store: %w", err)
			}
			return st.CompressObject(args[0])
		},
	}

	var decompressCmd = &cobra.Command{
		Use:   "decompress <hash>",
		Short: "Restore a compressed object to raw form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("opening object store: %w", err)
			}
			return st.DecompressObject(args[0])
		},
	}

	var watchCmd = &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch a directory and record changes automatically",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewLogger(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			defer logger.Sync()

			st, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("opening object store: %w", err)
			}
			db, err := openDB(cfg)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			tr, err := tracker.New(root, st, journal.New(db), logger.WithComponent("tracker"), cfg.Watch.Ignore...)
			if err != nil {
				return fmt.Errorf("starting tracker: %w", err)
			}
			defer tr.Close()

			fmt.Println("Watching", root, "(ctrl-c to stop)")
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig
			return nil
		},
	}

	rootCmd.AddCommand(initCmd, storeCmd, catCmd, hasCmd, diffCmd, similarCmd,
		logCmd, sizeCmd, cleanupCmd, compressCmd, decompressCmd, watchCmd)
}

func shortHash(hash string) string {
	if hash == "" {
		return "-"
	}
	return hash[:8]
}

func printColoredDiff(lines []string) {
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			added.Println(line)
		case strings.HasPrefix(line, "-"):
			removed.Println(line)
		default:
			fmt.Println(line)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
