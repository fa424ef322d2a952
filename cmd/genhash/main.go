package main

import (
	"fmt"
	"os"

	"colectas/internal/service"
)

func main() {
	pin := "1234"
	if len(os.Args) > 1 {
		pin = os.Args[1]
	}
	fmt.Println(service.PinDigest(pin))
}
