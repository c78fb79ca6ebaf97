package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/austinabell/stwo/internal/leafstream"
	"github.com/austinabell/stwo/internal/leaves"
	"github.com/austinabell/stwo/pkg/hasher"
	"github.com/austinabell/stwo/pkg/merkle"
)

const progressEvery = 100_000

var (
	workers int
	config  string
	verbose bool

	logger *zap.Logger
	appFs  = afero.NewOsFs()
)

// proofDoc is the self-contained proof format written by prove and read back
// by verify.
type proofDoc struct {
	Root     hasher.Digest `json:"root"`
	LeafSize int           `json:"leaf_size"`
	Proof    merkle.Proof  `json:"proof"`
}

var rootCmd = &cobra.Command{
	Use:   "stwo",
	Short: "stwo - hashing and Merkle commitment toolkit",
	Long: `stwo hashes data under the commitment layer's algorithms and builds
Merkle commitments with inclusion proofs over fixed-size leaf files.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if config != "" {
			viper.SetConfigFile(config)
			if err := viper.ReadInConfig(); err != nil {
				log.Printf("Warning: Could not read config file: %v", err)
			}
		}

		if workers > 0 {
			viper.Set("workers", workers)
		}
		logger = newLogger(verbose)
	},
}

var hashCmd = &cobra.Command{
	Use:   "hash [files...]",
	Short: "Hash files (or stdin) and print their digests",
	Long:  `Hash each file in one pass and print one digest per line. Pass - to read stdin.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHash,
}

var treeCmd = &cobra.Command{
	Use:   "root <file>",
	Short: "Build the Merkle root of a fixed-size leaf file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoot,
}

var proveCmd = &cobra.Command{
	Use:   "prove <file>",
	Short: "Produce an inclusion proof for one leaf of a leaf file",
	Args:  cobra.ExactArgs(1),
	RunE:  runProve,
}

var verifyCmd = &cobra.Command{
	Use:   "verify <file>",
	Short: "Check an inclusion proof against a leaf file",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported algorithms",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Supported algorithms:")
		for _, algo := range hasher.List() {
			fmt.Printf("  - %s\n", algo)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "t", 0, "Number of worker threads (default: CPU cores)")
	rootCmd.PersistentFlags().StringVar(&config, "config", "", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	hashCmd.Flags().StringP("algorithm", "a", hasher.Blake2sName, "Hash algorithm")

	treeCmd.Flags().StringP("algorithm", "a", hasher.Blake2sName, "Hash algorithm")
	treeCmd.Flags().Int("leaf-size", 0, "Leaf size in bytes (required)")
	treeCmd.MarkFlagRequired("leaf-size")

	proveCmd.Flags().StringP("algorithm", "a", hasher.Blake2sName, "Hash algorithm")
	proveCmd.Flags().Int("leaf-size", 0, "Leaf size in bytes (required)")
	proveCmd.Flags().IntP("index", "i", 0, "Leaf index to prove")
	proveCmd.Flags().StringP("out", "o", "", "Write the proof to a file instead of stdout")
	proveCmd.MarkFlagRequired("leaf-size")

	verifyCmd.Flags().StringP("proof", "p", "", "Proof file produced by prove (required)")
	verifyCmd.Flags().String("root", "", "Expected root in hex (default: the root recorded in the proof)")
	verifyCmd.MarkFlagRequired("proof")

	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(proveCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(listCmd)

	viper.SetEnvPrefix("STWO")
	viper.AutomaticEnv()
	viper.SetDefault("workers", runtime.NumCPU())
}

func newLogger(verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(level),
	)
	return zap.New(core)
}

func numWorkers() int {
	n := viper.GetInt("workers")
	if workers > 0 {
		n = workers
	}
	return n
}

// signalContext cancels the returned context on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, stopping...")
		cancel()
	}()
	return ctx, cancel
}

func hashReader(h hasher.Hasher, r io.Reader) (hasher.Digest, error) {
	buf := make([]byte, 1<<20)
	for {
		n, err := r.Read(buf)
		h.Update(buf[:n])
		if err == io.EOF {
			return h.FinalizeReset(), nil
		}
		if err != nil {
			h.Reset()
			return hasher.Digest{}, err
		}
	}
}

func runHash(cmd *cobra.Command, args []string) error {
	algo, _ := cmd.Flags().GetString("algorithm")
	if _, err := hasher.Lookup(algo); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	digests := make([]hasher.Digest, len(args))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers())
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			h, err := hasher.New(algo)
			if err != nil {
				return err
			}
			if path == "-" {
				d, err := hashReader(h, os.Stdin)
				if err != nil {
					return fmt.Errorf("hashing stdin: %w", err)
				}
				digests[i] = d
				return nil
			}
			f, err := appFs.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			d, err := hashReader(h, f)
			if err != nil {
				return fmt.Errorf("hashing %s: %w", path, err)
			}
			digests[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, path := range args {
		fmt.Printf("%s  %s\n", digests[i], path)
	}
	return nil
}

func buildTree(ctx context.Context, path, algo string, leafSize int) (*merkle.Tree, error) {
	newHasher, err := hasher.Lookup(algo)
	if err != nil {
		return nil, err
	}

	digests, err := leafstream.HashLeaves(ctx, appFs, path, algo, leafstream.Options{
		LeafSize:      leafSize,
		Workers:       numWorkers(),
		ProgressEvery: progressEvery,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("leaves hashed", zap.Int("count", len(digests)), zap.String("file", path))

	return merkle.BuildFromLeafDigests(newHasher, digests, merkle.Config{
		Workers: numWorkers(),
		Logger:  logger,
	})
}

func runRoot(cmd *cobra.Command, args []string) error {
	algo, _ := cmd.Flags().GetString("algorithm")
	leafSize, _ := cmd.Flags().GetInt("leaf-size")

	ctx, cancel := signalContext()
	defer cancel()

	tree, err := buildTree(ctx, args[0], algo, leafSize)
	if err != nil {
		return err
	}
	fmt.Printf("%s  %d leaves  depth %d\n", tree.Root(), tree.NumLeaves(), tree.Depth())
	return nil
}

func runProve(cmd *cobra.Command, args []string) error {
	algo, _ := cmd.Flags().GetString("algorithm")
	leafSize, _ := cmd.Flags().GetInt("leaf-size")
	index, _ := cmd.Flags().GetInt("index")
	out, _ := cmd.Flags().GetString("out")

	ctx, cancel := signalContext()
	defer cancel()

	tree, err := buildTree(ctx, args[0], algo, leafSize)
	if err != nil {
		return err
	}
	proof, err := tree.Proof(index)
	if err != nil {
		return err
	}

	raw, err := json.MarshalIndent(proofDoc{
		Root:     tree.Root(),
		LeafSize: leafSize,
		Proof:    proof,
	}, "", "  ")
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Println(string(raw))
		return nil
	}
	if err := afero.WriteFile(appFs, out, append(raw, '\n'), 0o644); err != nil {
		return err
	}
	fmt.Printf("Proof for leaf %d written to %s\n", index, out)
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	proofPath, _ := cmd.Flags().GetString("proof")
	rootHex, _ := cmd.Flags().GetString("root")

	raw, err := afero.ReadFile(appFs, proofPath)
	if err != nil {
		return err
	}
	var doc proofDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", proofPath, err)
	}

	root := doc.Root
	if rootHex != "" {
		if root, err = hasher.DigestFromHex(rootHex); err != nil {
			return err
		}
	}
	newHasher, err := hasher.Lookup(doc.Proof.Algorithm)
	if err != nil {
		return err
	}
	leaf, err := leaves.Extract(appFs, args[0], doc.LeafSize, doc.Proof.Index)
	if err != nil {
		return err
	}

	if !merkle.Verify(newHasher, root, leaf, doc.Proof) {
		return fmt.Errorf("proof for leaf %d of %s does not verify against root %s",
			doc.Proof.Index, args[0], root)
	}
	fmt.Printf("OK  leaf %d of %s is committed under %s\n", doc.Proof.Index, args[0], root)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
