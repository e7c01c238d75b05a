package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"vaultd/client"
	"vaultd/config"
)

const usage = `usage: vaultctl [-node URL] [-config FILE] <command> [flags]

commands:
  keygen                          generate a key pair
  derive      -authority PK       derive vault state / holding addresses (offline)
  init        -key HEX            initialize the signer's vault
  deposit     -key HEX -authority PK -amount N
  withdraw    -key HEX -amount N
  toggle-lock -key HEX
  vault       -authority PK
  account     -address PK
  receipt     -tx TXID
  events      [-from SLOT] [-limit N]
`

// cli 全局参数与依赖
type cli struct {
	nodeURL string
	cfg     *config.Config
	timeout time.Duration
	out     io.Writer
	// 测试时替换
	newClient func() *client.Client
}

func main() {
	c := &cli{out: os.Stdout}
	fs := flag.NewFlagSet("vaultctl", flag.ExitOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	fs.StringVar(&c.nodeURL, "node", "https://127.0.0.1:8443", "vaultd API base URL")
	configFile := fs.String("config", "", "config file (vault program / seeds / QUIC settings)")
	fs.DurationVar(&c.timeout, "timeout", 30*time.Second, "request timeout")
	_ = fs.Parse(os.Args[1:])

	c.cfg = config.DefaultConfig()
	if *configFile != "" {
		cfg, err := config.LoadFromFile(*configFile)
		if err != nil {
			fatal(err)
		}
		c.cfg = cfg
	}
	c.newClient = func() *client.Client {
		return client.NewHTTP3Client(c.nodeURL, c.cfg)
	}

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.run(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "vaultctl:", err)
	os.Exit(1)
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "keygen":
		return c.keygen()
	case "derive":
		return c.derive(args)
	case "init", "deposit", "withdraw", "toggle-lock":
		return c.submit(ctx, cmd, args)
	case "vault":
		return c.vault(ctx, args)
	case "account":
		return c.account(ctx, args)
	case "receipt":
		return c.receipt(ctx, args)
	case "events":
		return c.events(ctx, args)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (c *cli) print(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
