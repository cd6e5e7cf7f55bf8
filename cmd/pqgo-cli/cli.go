// Package pqgo is the pqgo command line: key generation, encapsulation,
// signing and handshake demos over the facade schemes, with keys kept in a
// bolt key store.
package pqgo

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

// default output of the commands; tests redirect it
var output io.Writer = os.Stdout

// Automatically set through -ldflags
var (
	version   = "master"
	gitCommit = "none"
	buildDate = "unknown"
)

var configFlag = &cli.StringFlag{
	Name:  "config",
	Usage: "TOML configuration file. Defaults apply when not given.",
}

var schemeFlag = &cli.StringFlag{
	Name: "scheme",
	Usage: "Parameter set to use, e.g. Kyber768, R5ND_3KEMb or Dilithium2. " +
		"The aliases kyber, round5 and dilithium select the configured default.",
}

var entropyFlag = &cli.StringFlag{
	Name: "entropy",
	Usage: "Hex entropy for deterministic key generation or encapsulation: " +
		"48 bytes for the KEMs, 32 bytes for Dilithium. Omit to use the system source.",
}

var storeFlag = &cli.StringFlag{
	Name:  "store",
	Usage: "Path of the key store database, overriding the configuration.",
}

var nameFlag = &cli.StringFlag{
	Name:  "name",
	Usage: "Name of the key pair in the key store.",
}

var outFlag = &cli.StringFlag{
	Name:  "out",
	Usage: "Write the generated keys to <out>.pk and <out>.sk instead of the key store.",
}

var verboseFlag = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "If set, verbosity is at the debug level",
}

var jsonFlag = &cli.BoolFlag{
	Name:  "json",
	Usage: "If set, logs are written as JSON",
}

var akeFlag = &cli.BoolFlag{
	Name:  "ake",
	Usage: "Run the mutually authenticated handshake instead of the unilateral one.",
}

func toArray(flags ...cli.Flag) []cli.Flag {
	return flags
}

// CLI returns the pqgo application.
func CLI() *cli.App {
	app := cli.NewApp()
	app.Name = "pqgo"
	app.Version = version
	app.Usage = "post-quantum key encapsulation and signatures"
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(output, "pqgo %v (date %v, commit %v)\n", version, buildDate, gitCommit)
	}
	app.Writer = output
	app.ErrWriter = output

	app.Flags = toArray(configFlag, storeFlag, verboseFlag, jsonFlag)
	app.Commands = []*cli.Command{
		{
			Name:   "keygen",
			Usage:  "Generate a key pair and store it under --name, or write it to --out.",
			Flags:  toArray(schemeFlag, entropyFlag, nameFlag, outFlag),
			Action: keygenCmd,
		},
		{
			Name:      "encap",
			Usage:     "Encapsulate a fresh shared secret to the public key stored under --name.",
			ArgsUsage: "[PK_FILE] reads a hex public key instead of the key store",
			Flags:     toArray(schemeFlag, entropyFlag, nameFlag),
			Action:    encapCmd,
		},
		{
			Name:      "decap",
			Usage:     "Recover the shared secret of a hex ciphertext with the key stored under --name.",
			ArgsUsage: "CT_FILE (- for stdin)",
			Flags:     toArray(schemeFlag, nameFlag),
			Action:    decapCmd,
		},
		{
			Name:      "sign",
			Usage:     "Sign a message with the key stored under --name and print the hex signed message.",
			ArgsUsage: "MSG_FILE (- for stdin)",
			Flags:     toArray(schemeFlag, nameFlag),
			Action:    signCmd,
		},
		{
			Name:      "verify",
			Usage:     "Check a hex signed message against the public key stored under --name.",
			ArgsUsage: "SM_FILE (- for stdin)",
			Flags:     toArray(schemeFlag, nameFlag),
			Action:    verifyCmd,
		},
		{
			Name:      "open",
			Usage:     "Verify a hex signed message and print the message it carries.",
			ArgsUsage: "SM_FILE (- for stdin)",
			Flags:     toArray(schemeFlag, nameFlag),
			Action:    openCmd,
		},
		{
			Name:   "kex",
			Usage:  "Run a Kyber UAKE or AKE handshake in-process and report whether both keys match.",
			Flags:  toArray(schemeFlag, akeFlag),
			Action: kexCmd,
		},
		{
			Name:   "list",
			Usage:  "List the key pairs in the key store.",
			Flags:  toArray(schemeFlag),
			Action: listCmd,
		},
		{
			Name:   "delete",
			Usage:  "Delete the key pair stored under --name.",
			Flags:  toArray(schemeFlag, nameFlag),
			Action: deleteCmd,
		},
		{
			Name:   "schemes",
			Usage:  "List every supported parameter set with its key, ciphertext and signature sizes.",
			Action: schemesCmd,
		},
		{
			Name:   "metrics",
			Usage:  "Exercise every configured scheme once and print the collected metrics.",
			Action: metricsCmd,
		},
	}
	return app
}

// Run runs the application on the process arguments.
func Run() {
	if err := CLI().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "pqgo: %v\n", err)
		os.Exit(1)
	}
}
