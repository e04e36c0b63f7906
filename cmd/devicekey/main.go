package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env from project root
	_ = godotenv.Load("../.env")

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run devicekey.go <deviceID>")
		os.Exit(1)
	}

	deviceID := os.Args[1]
	secret := os.Getenv("DEVICE_MASTER_SECRET")
	if secret == "" {
		fmt.Println("Error: DEVICE_MASTER_SECRET not found in .env")
		os.Exit(1)
	}

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(deviceID))
	signature := hex.EncodeToString(h.Sum(nil))

	key := deviceID + "." + signature
	fmt.Printf("Generated key for device %s:\n%s\n", deviceID, key)
}
