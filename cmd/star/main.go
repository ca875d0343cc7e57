package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/peterokwara/private-blockchain/internal/notary"
	"github.com/peterokwara/private-blockchain/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is overridden by goreleaser via -ldflags "-X main.version=...".
var version = "dev"

var (
	notaryURL string
	cfgFile   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "star",
	Short: "Star notary CLI",
	Long: `star is the command-line interface for the star notary.

It generates keys, requests ownership challenges, signs and submits star
records, and queries the sealed chain.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(home + "/.star")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if notaryURL == "" {
			notaryURL = viper.GetString("notary_url")
		}
		if notaryURL == "" {
			notaryURL = "http://localhost:8000"
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.star/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&notaryURL, "notary", "", "notary URL (default http://localhost:8000)")

	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(challengeCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// ── keygen ───────────────────────────────────────────────────────────────────

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a secp256k1 keypair and print the address",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := crypto.GenerateKey()
		if err != nil {
			return fmt.Errorf("generate key: %w", err)
		}

		fmt.Printf("address:     %s\n", crypto.PubkeyToAddress(key.PublicKey).Hex())
		fmt.Printf("private key: %s\n", hexutil.Encode(crypto.FromECDSA(key)))
		fmt.Println("\nKeep the private key safe; it is the only proof of address ownership.")
		return nil
	},
}

// ── challenge ────────────────────────────────────────────────────────────────

var challengeCmd = &cobra.Command{
	Use:   "challenge <address>",
	Short: "Request an ownership challenge for an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(notaryURL)
		challenge, err := c.RequestChallenge(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(challenge)
		return nil
	},
}

// ── submit ───────────────────────────────────────────────────────────────────

var (
	submitKeyHex string
	submitDec    string
	submitRA     string
	submitStory  string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Request a challenge, sign it locally, and submit a star",
	Long: `Submit requests a fresh challenge for the key's address, signs it with
the private key (the key never leaves this machine), and submits the star
record in one step.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		keyHex := submitKeyHex
		if keyHex == "" {
			keyHex = viper.GetString("private_key")
		}
		if keyHex == "" {
			return fmt.Errorf("--key or private_key config entry is required")
		}

		raw, err := hexutil.Decode(keyHex)
		if err != nil {
			return fmt.Errorf("decode private key: %w", err)
		}
		key, err := crypto.ToECDSA(raw)
		if err != nil {
			return fmt.Errorf("parse private key: %w", err)
		}
		address := crypto.PubkeyToAddress(key.PublicKey).Hex()

		ctx := cmd.Context()
		c := client.New(notaryURL)

		challenge, err := c.RequestChallenge(ctx, address)
		if err != nil {
			return fmt.Errorf("request challenge: %w", err)
		}

		signature, err := notary.SignChallenge(key, challenge)
		if err != nil {
			return err
		}

		entry, err := c.SubmitStar(ctx, client.SubmitRequest{
			Address:   address,
			Challenge: challenge,
			Signature: signature,
			Star: client.Star{
				Declination:    submitDec,
				RightAscension: submitRA,
				Story:          submitStory,
			},
		})
		if err != nil {
			return fmt.Errorf("submit star: %w", err)
		}

		fmt.Printf("star sealed at position %d\n", entry.Position)
		fmt.Printf("hash: %s\n", entry.Hash)
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitKeyHex, "key", "", "hex-encoded private key (or private_key config entry)")
	submitCmd.Flags().StringVar(&submitDec, "dec", "", "star declination")
	submitCmd.Flags().StringVar(&submitRA, "ra", "", "star right ascension")
	submitCmd.Flags().StringVar(&submitStory, "story", "", "star story")
	_ = submitCmd.MarkFlagRequired("dec")
	_ = submitCmd.MarkFlagRequired("ra")
	_ = submitCmd.MarkFlagRequired("story")
}

// ── lookup ───────────────────────────────────────────────────────────────────

var lookupCmd = &cobra.Command{
	Use:   "lookup <owner|position|hash> <arg>",
	Short: "Look up entries by owner address, position, or hash",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := client.New(notaryURL)

		switch args[0] {
		case "owner":
			stars, err := c.StarsByOwner(ctx, args[1])
			if err != nil {
				return err
			}
			if len(stars) == 0 {
				fmt.Println("no stars registered for this owner")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "OWNER\tDEC\tRA\tSTORY")
			for _, s := range stars {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					s.Owner, s.Star.Declination, s.Star.RightAscension, s.Star.Story)
			}
			return w.Flush()

		case "position":
			var position int
			if _, err := fmt.Sscanf(args[1], "%d", &position); err != nil {
				return fmt.Errorf("position must be an integer")
			}
			entry, err := c.EntryByPosition(ctx, position)
			if err != nil {
				return err
			}
			return printJSON(entry)

		case "hash":
			entry, err := c.EntryByHash(ctx, args[1])
			if err != nil {
				return err
			}
			return printJSON(entry)

		default:
			return fmt.Errorf("unknown lookup kind %q (want owner, position, or hash)", args[0])
		}
	},
}

// ── ledger / validate / version ──────────────────────────────────────────────

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show the chain height and tip hash",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(notaryURL)
		o, err := c.Ledger(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("height: %d\ntip:    %s\n", o.Height, o.Tip)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run a full chain validation and report findings",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(notaryURL)
		report, err := c.Validate(cmd.Context())
		if err != nil {
			return err
		}
		if report.Valid {
			fmt.Println("chain is intact")
			return nil
		}
		for _, f := range report.Errors {
			fmt.Printf("%s at position %d\n", f.Kind, f.Position)
		}
		return fmt.Errorf("chain validation found %d error(s)", len(report.Errors))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
