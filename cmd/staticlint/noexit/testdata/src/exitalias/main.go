package main

import xos "os"

func main() {
	defer func() {
		xos.Exit(3) // want "вызов os.Exit в функции main запрещён"
	}()
}
