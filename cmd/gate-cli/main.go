package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"group-mail/internal/app/keys"
	"group-mail/internal/app/limbs"
	"group-mail/internal/app/signal"
	"group-mail/pkg/logger"
)

const defaultBase = "http://localhost:3000"

func main() {
	base := os.Getenv("GATE_API_BASE")
	if base == "" {
		base = defaultBase
	}

	signalsCmd := flag.NewFlagSet("signals", flag.ExitOnError)
	signalsSenders := signalsCmd.String("senders", "", "Comma separated GitHub users (required)")
	signalsMessage := signalsCmd.String("message", "", "Message body")
	signalsOut := signalsCmd.String("out", "", "Write the response to this file instead of stdout")

	sendCmd := flag.NewFlagSet("send", flag.ExitOnError)
	sendTo := sendCmd.String("to", "", "Recipient, server default when empty")
	sendHeader := sendCmd.String("header", "", "Subject")
	sendMessage := sendCmd.String("message", "", "Message body")
	sendSenders := sendCmd.String("senders", "", "Comma separated GitHub users (required)")
	sendProof := sendCmd.String("proof", "", "Path to the proof file (required)")

	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	listLimit := listCmd.Int("limit", 50, "Page size")
	listOffset := listCmd.Int("offset", 0, "Offset")

	getCmd := flag.NewFlagSet("get", flag.ExitOnError)
	getID := getCmd.String("id", "", "Record ID (required)")

	keysCmd := flag.NewFlagSet("keys", flag.ExitOnError)
	keysUser := keysCmd.String("user", "", "GitHub user (required)")
	keysHost := keysCmd.String("host", "https://github.com", "Key host")

	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "signals":
		signalsCmd.Parse(os.Args[2:])
		if *signalsSenders == "" {
			fmt.Fprintln(os.Stderr, "Missing required flag: -senders")
			signalsCmd.Usage()
			os.Exit(1)
		}
		body := mustJSON(map[string]any{
			"senders": splitList(*signalsSenders),
			"message": *signalsMessage,
		})
		out := io.Writer(os.Stdout)
		if *signalsOut != "" {
			f, ferr := os.Create(*signalsOut)
			if ferr != nil {
				log.Fatal(ferr)
			}
			defer f.Close()
			out = f
		}
		err = do(http.MethodPost, base+"/v1/signals", bytes.NewReader(body), out)

	case "send":
		sendCmd.Parse(os.Args[2:])
		if *sendSenders == "" || *sendProof == "" {
			fmt.Fprintln(os.Stderr, "Missing required flags: -senders and -proof")
			sendCmd.Usage()
			os.Exit(1)
		}
		proof, ferr := os.ReadFile(*sendProof)
		if ferr != nil {
			log.Fatal(ferr)
		}
		req := map[string]any{
			"header":          *sendHeader,
			"message":         *sendMessage,
			"senders":         splitList(*sendSenders),
			"group_signature": strings.TrimSpace(string(proof)),
		}
		if *sendTo != "" {
			req["to"] = *sendTo
		}
		err = do(http.MethodPost, base+"/v1/emails", bytes.NewReader(mustJSON(req)), os.Stdout)

	case "list":
		listCmd.Parse(os.Args[2:])
		err = do(http.MethodGet, fmt.Sprintf("%s/v1/emails?limit=%d&offset=%d", base, *listLimit, *listOffset), nil, os.Stdout)

	case "get":
		getCmd.Parse(os.Args[2:])
		if *getID == "" {
			fmt.Fprintln(os.Stderr, "Missing required flag: -id")
			getCmd.Usage()
			os.Exit(1)
		}
		err = do(http.MethodGet, base+"/v1/emails/"+*getID, nil, os.Stdout)

	case "keys":
		keysCmd.Parse(os.Args[2:])
		if *keysUser == "" {
			fmt.Fprintln(os.Stderr, "Missing required flag: -user")
			keysCmd.Usage()
			os.Exit(1)
		}
		err = printKeyLimbs(*keysHost, *keysUser)

	default:
		usage()
		log.Fatalf("Unknown command: %s\n\n", os.Args[1])
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Println(`Usage: gate-cli <command> [flags]

Commands:
  signals  -senders a,b -message m [-out f]        POST /v1/signals
  send     -senders a,b -proof f [-to] [-header]   POST /v1/emails
           [-message]
  list     [-limit n] [-offset n]                  GET  /v1/emails
  get      -id <id>                                GET  /v1/emails/:id
  keys     -user <user> [-host url]                print the user's rsa moduli as limbs

Environment:
  GATE_API_BASE   override default http://localhost:3000`)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func mustJSON(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Fatal(err)
	}
	return raw
}

// printKeyLimbs fetches keys directly from the key host, without the server.
func printKeyLimbs(host, user string) error {
	fetcher := keys.NewFetcher(keys.Config{BaseURL: host}, &http.Client{}, logger.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userKeys, err := fetcher.FetchKeys(ctx, user)
	if err != nil {
		return err
	}

	for i, key := range userKeys {
		v, err := limbs.Encode(key.Modulus, signal.LimbWidth, signal.KeyLimbCount)
		if err != nil {
			return fmt.Errorf("key %d: %w", i, err)
		}
		fmt.Printf("# key %d (%d bit modulus)\n", i, 8*len(key.Modulus))
		fmt.Println(strings.Join(v.Strings(), "\n"))
	}
	return nil
}

func do(method, url string, body io.Reader, out io.Writer) error {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	fmt.Fprintf(os.Stderr, "→ %s %s\n", method, url)
	fmt.Fprintf(os.Stderr, "← %d %s\n", res.StatusCode, http.StatusText(res.StatusCode))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		fmt.Fprintf(os.Stderr, "Error: HTTP %d - %s\n", res.StatusCode, http.StatusText(res.StatusCode))
	}
	if _, err := io.Copy(out, res.Body); err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	fmt.Fprintln(out)
	return nil
}
