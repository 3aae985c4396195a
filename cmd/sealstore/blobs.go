package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/kochabx/sealstore/cas"
	"github.com/kochabx/sealstore/core/crypto/box"
	"github.com/kochabx/sealstore/core/crypto/keyfile"
	"github.com/kochabx/sealstore/core/header"
	"github.com/kochabx/sealstore/errors"
	"github.com/kochabx/sealstore/log"
)

// stdinPath reads the plaintext from standard input
const stdinPath = "-"

func putCommand() cli.Command {
	return cli.Command{
		Name:      "put",
		Usage:     "seal files for a recipient and store them",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "recipient, r", Usage: "recipient public key file"},
			cli.StringFlag{Name: "content-type", Usage: "content type recorded in the metadata"},
			cli.BoolFlag{Name: "checksum", Usage: "record the plaintext SHA-256 in the metadata"},
			cli.IntFlag{Name: "workers, w", Usage: "concurrent puts (default workers)"},
		},
		Action: put,
	}
}

func getCommand() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "fetch, verify and decrypt a blob",
		ArgsUsage: "ADDR",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "key, k", Usage: "secret key file (default: look up keys.dir by fingerprint)"},
			cli.StringFlag{Name: "out, o", Usage: "write the plaintext to this file instead of stdout"},
		},
		Action: get,
	}
}

func metaCommand() cli.Command {
	return cli.Command{
		Name:      "meta",
		Usage:     "print the clear-text metadata of a blob as JSON",
		ArgsUsage: "ADDR",
		Action:    meta,
	}
}

func existsCommand() cli.Command {
	return cli.Command{
		Name:      "exists",
		Usage:     "report whether a blob is stored; exits 1 when it is not",
		ArgsUsage: "ADDR",
		Action:    exists,
	}
}

func deleteCommand() cli.Command {
	return cli.Command{
		Name:      "delete",
		Usage:     "remove a blob",
		ArgsUsage: "ADDR",
		Action:    remove,
	}
}

func verifyCommand() cli.Command {
	return cli.Command{
		Name:      "verify",
		Usage:     "check stored blobs against their addresses without decrypting",
		ArgsUsage: "ADDR...",
		Flags: []cli.Flag{
			cli.IntFlag{Name: "workers, w", Usage: "concurrent checks (default workers)"},
		},
		Action: verify,
	}
}

type putResult struct {
	addr string
	err  error
}

func put(c *cli.Context) error {
	files := c.Args()
	if len(files) == 0 {
		return errors.InvalidArgument("at least one file is required")
	}
	recipient := c.String("recipient")
	if recipient == "" {
		return errors.InvalidArgument("--recipient is required")
	}
	pub, err := keyfile.LoadPublicKey(recipient)
	if err != nil {
		return errors.WrapWithMetadata(err, errors.CodeInvalidArgument, map[string]string{"path": recipient}, "invalid recipient key")
	}

	return withSession(c, func(ctx context.Context, s *session) error {
		workers := c.Int("workers")
		if workers <= 0 {
			workers = s.workers
		}

		pool, err := ants.NewPool(workers)
		if err != nil {
			return errors.Wrap(err, errors.CodeInvalidArgument, "failed to create worker pool")
		}
		defer pool.Release()

		contentType, checksum := c.String("content-type"), c.Bool("checksum")
		results := make([]putResult, len(files))
		var wg sync.WaitGroup
		for i, path := range files {
			wg.Add(1)
			err := pool.Submit(func() {
				defer wg.Done()
				addr, err := putFile(ctx, s.cas, pub, path, contentType, checksum)
				results[i] = putResult{addr: addr, err: err}
			})
			if err != nil {
				wg.Done()
				results[i] = putResult{err: err}
			}
		}
		wg.Wait()

		return reportPuts(c.App.Writer, runtimeFrom(c).logger, files, results)
	})
}

// reportPuts prints every stored address, including blobs whose event
// could not be published, and returns the first failure.
func reportPuts(w io.Writer, logger *log.Logger, files []string, results []putResult) error {
	var firstErr error
	for i, r := range results {
		if r.addr != "" {
			fmt.Fprintln(w, r.addr)
		}
		if r.err == nil {
			continue
		}
		ev := logger.Error().Err(r.err).Str("file", files[i])
		if r.addr != "" {
			ev = ev.Str("address", r.addr)
		}
		ev.Msg("put failed")
		if firstErr == nil {
			firstErr = r.err
		}
	}
	return firstErr
}

func putFile(ctx context.Context, s *cas.Store, pub *box.PublicKey, path, contentType string, checksum bool) (string, error) {
	var (
		plaintext []byte
		err       error
		md        = &header.Metadata{ContentType: contentType}
	)
	if path == stdinPath {
		plaintext, err = io.ReadAll(os.Stdin)
	} else {
		plaintext, err = os.ReadFile(path)
		md.OriginalFilename = filepath.Base(path)
	}
	if err != nil {
		return "", errors.WrapWithMetadata(err, errors.CodeInvalidArgument, map[string]string{"path": path}, "input not readable")
	}

	if checksum {
		md.PlaintextChecksum = cas.ContentAddress(plaintext)
	}
	return s.Put(ctx, plaintext, pub, md)
}

func get(c *cli.Context) error {
	addr := c.Args().First()
	if addr == "" {
		return errors.InvalidArgument("address argument is required")
	}

	var sec *box.SecretKey
	if path := c.String("key"); path != "" {
		k, err := keyfile.LoadSecretKey(path, runtimeFrom(c).passphrase)
		if err != nil {
			return errors.WrapWithMetadata(err, errors.CodeInvalidArgument, map[string]string{"path": path}, "invalid secret key file")
		}
		defer k.Destroy()
		sec = k
	}

	return withSession(c, func(ctx context.Context, s *session) error {
		plaintext, err := s.cas.Get(ctx, addr, sec)
		if err != nil {
			return err
		}
		defer clear(plaintext)

		out := c.String("out")
		if out == "" {
			_, err = c.App.Writer.Write(plaintext)
			return err
		}
		if err := os.WriteFile(out, plaintext, 0o600); err != nil {
			return errors.WrapWithMetadata(err, errors.CodeStorage, map[string]string{"path": out}, "output not writable")
		}
		return nil
	})
}

func meta(c *cli.Context) error {
	addr := c.Args().First()
	return withSession(c, func(ctx context.Context, s *session) error {
		md, err := s.cas.GetMetadata(ctx, addr)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(md)
	})
}

func exists(c *cli.Context) error {
	addr := c.Args().First()
	return withSession(c, func(ctx context.Context, s *session) error {
		ok, err := s.cas.Exists(ctx, addr)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, ok)
		if !ok {
			return cli.NewExitError("", exitFailure)
		}
		return nil
	})
}

func remove(c *cli.Context) error {
	addr := c.Args().First()
	return withSession(c, func(ctx context.Context, s *session) error {
		if err := s.cas.Delete(ctx, addr); err != nil {
			return err
		}
		runtimeFrom(c).logger.Info().Str("address", addr).Msg("blob deleted")
		return nil
	})
}

func verify(c *cli.Context) error {
	addrs := c.Args()
	if len(addrs) == 0 {
		return errors.InvalidArgument("at least one address is required")
	}

	return withSession(c, func(ctx context.Context, s *session) error {
		workers := c.Int("workers")
		if workers <= 0 {
			workers = s.workers
		}

		results := make([]error, len(addrs))
		var eg errgroup.Group
		eg.SetLimit(workers)
		for i, addr := range addrs {
			eg.Go(func() error {
				// a failed check is reported, not fatal to the others
				_, results[i] = s.cas.Verify(ctx, addr)
				return nil
			})
		}
		_ = eg.Wait()

		failed := 0
		for i, err := range results {
			if err != nil {
				failed++
				fmt.Fprintf(c.App.Writer, "%s FAILED %v\n", addrs[i], err)
				continue
			}
			fmt.Fprintf(c.App.Writer, "%s OK\n", addrs[i])
		}
		if failed > 0 {
			return cli.NewExitError(fmt.Sprintf("%d of %d blobs failed verification", failed, len(addrs)), exitIntegrity)
		}
		return nil
	})
}
