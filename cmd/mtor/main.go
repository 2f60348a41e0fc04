// Copyright © 2021 Rak Laptudirm <raklaptudirm@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/raklaptudirm/mtor/internal/cli"
	"github.com/raklaptudirm/mtor/internal/logging"
)

// cmd is the root of the kong CLI: one struct field per mtor subcommand.
var cmd struct {
	Debug bool `help:"Enable debug logging." short:"d"`

	Decode struct {
		Value string `arg:"" help:"Bencoded string to decode."`
	} `cmd:"" help:"Decode a bencoded value and print its JSON projection."`

	Info struct {
		Path string `arg:"" type:"existingfile" help:"Path to the .torrent file."`
	} `cmd:"" help:"Print a torrent's tracker URL, length, info hash, and piece hashes."`

	Peers struct {
		Path string `arg:"" type:"existingfile" help:"Path to the .torrent file."`
	} `cmd:"" help:"Print the peers the tracker returns for a torrent."`

	Handshake struct {
		Path string `arg:"" type:"existingfile" help:"Path to the .torrent file."`
		Addr string `arg:"" help:"Peer address, as ip:port."`
	} `cmd:"" help:"Perform the peer handshake and print the remote peer id."`

	DownloadPiece struct {
		Out   string `short:"o" required:"" help:"Output file path."`
		Path  string `arg:"" type:"existingfile" help:"Path to the .torrent file."`
		Index int    `arg:"" help:"Zero-based piece index."`
	} `cmd:"" name:"download_piece" help:"Download a single piece to a file."`

	Download struct {
		Out  string `short:"o" required:"" help:"Output file path."`
		Path string `arg:"" type:"existingfile" help:"Path to the .torrent file."`
	} `cmd:"" help:"Download the whole torrent to a file."`
}

func main() {
	ctx := kong.Parse(&cmd,
		kong.Name("mtor"),
		kong.Description("A minimal BitTorrent v1 single-file download client."),
		kong.UsageOnError(),
	)

	log := logging.New(os.Stderr, cmd.Debug)

	var err error
	switch ctx.Command() {
	case "decode <value>":
		err = cli.Decode(os.Stdout, cmd.Decode.Value)
	case "info <path>":
		err = cli.Info(os.Stdout, cmd.Info.Path)
	case "peers <path>":
		err = cli.Peers(os.Stdout, cmd.Peers.Path)
	case "handshake <path> <addr>":
		err = cli.Handshake(os.Stdout, cmd.Handshake.Path, cmd.Handshake.Addr)
	case "download_piece <path> <index>":
		err = cli.DownloadPiece(os.Stdout, cmd.DownloadPiece.Path, cmd.DownloadPiece.Out, cmd.DownloadPiece.Index)
	case "download <path>":
		err = cli.Download(os.Stdout, cmd.Download.Path, cmd.Download.Out)
	default:
		ctx.Fatalf("mtor: unknown command %q", ctx.Command())
	}

	if err != nil {
		log.Error().Err(err).Msg("mtor: command failed")
		os.Exit(1)
	}
}
