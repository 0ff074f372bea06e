package main

import "github.com/debox-network/ipfs-webdav/cmd/ipfsdavd/cmd"

func main() {
	cmd.Execute()
}
