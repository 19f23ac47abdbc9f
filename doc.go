// Package e2ee provides a hybrid end-to-end encryption engine: per-message
// content keys sealed with an authenticated cipher (AES-256-GCM or
// XChaCha20-Poly1305) and wrapped for the recipient with RSA-OAEP or
// ML-KEM-768.
//
// The engine manages key pairs per entity, including rotation with a
// bounded history of superseded keys, and secure channels that share a
// stretched secret among a fixed participant group. Every envelope carries
// an integrity digest that is verified before any key material is used.
//
// Basic usage:
//
//	engine, err := e2ee.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if _, err := engine.GenerateKeyPair("bob", 0); err != nil {
//	    log.Fatal(err)
//	}
//
//	msg, err := engine.EncryptForRecipient("hello bob", "bob")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	plaintext, err := engine.DecryptFromRecipient(msg, "bob")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(plaintext)
package e2ee
