package main

import "os"

func helper() {
	os.Exit(2)
}

func main() {
	helper()
	os.Exit(1) // want "вызов os.Exit в функции main запрещён"
}
