package main

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli"

	"github.com/kochabx/sealstore/core/crypto/box"
	"github.com/kochabx/sealstore/core/crypto/fingerprint"
	"github.com/kochabx/sealstore/core/crypto/keyfile"
	"github.com/kochabx/sealstore/core/qrcode"
	"github.com/kochabx/sealstore/errors"
)

func keyCommand() cli.Command {
	return cli.Command{
		Name:  "key",
		Usage: "manage recipient key pairs",
		Subcommands: []cli.Command{
			{
				Name:  "generate",
				Usage: "generate a key pair into the key directory",
				Flags: []cli.Flag{
					cli.StringFlag{Name: "name, n", Value: "sealstore", Usage: "base file name of the pair"},
					cli.StringFlag{Name: "dir, d", Usage: "output directory (default keys.dir)"},
				},
				Action: keyGenerate,
			},
			{
				Name:      "fingerprint",
				Usage:     "print the fingerprint of a public or secret key file",
				ArgsUsage: "FILE",
				Action:    keyFingerprint,
			},
			{
				Name:      "qr",
				Usage:     "render a public key as a QR code",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					cli.StringFlag{Name: "png", Usage: "write a PNG to this path instead of the terminal"},
					cli.IntFlag{Name: "size", Value: 256, Usage: "PNG size in pixels"},
				},
				Action: keyQR,
			},
		},
	}
}

func keyGenerate(c *cli.Context) error {
	rt := runtimeFrom(c)
	dir := c.String("dir")
	if dir == "" {
		dir = rt.config.Keys.Dir
	}

	kp, err := keyfile.GenerateKeyPair(
		keyfile.WithDir(dir),
		keyfile.WithName(c.String("name")),
		keyfile.WithPassphrase(rt.passphrase),
	)
	if err != nil {
		return errors.WrapWithMetadata(err, errors.CodeStorage, map[string]string{"dir": dir}, "key generation failed")
	}
	defer kp.Secret.Destroy()

	fp := fingerprint.Compute(kp.Public.Bytes())
	rt.logger.Info().
		Str("dir", dir).
		Str("fingerprint", fp).
		Bool("sealed", len(rt.passphrase) > 0).
		Msg("key pair generated")

	fmt.Fprintln(c.App.Writer, fp)
	return nil
}

func keyFingerprint(c *cli.Context) error {
	pub, err := loadPublic(c, c.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, fingerprint.Compute(pub.Bytes()))
	return nil
}

func keyQR(c *cli.Context) error {
	pub, err := loadPublic(c, c.Args().First())
	if err != nil {
		return err
	}

	if out := c.String("png"); out != "" {
		if err := qrcode.WritePNG(pub.String(), c.Int("size"), out); err != nil {
			return errors.WrapWithMetadata(err, errors.CodeStorage, map[string]string{"path": out}, "failed to write QR code")
		}
		return nil
	}

	s, err := qrcode.Terminal(pub.String())
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidArgument, "failed to encode QR code")
	}
	fmt.Fprint(c.App.Writer, s)
	return nil
}

// loadPublic reads a public key file, or derives the public half of a
// secret key file.
func loadPublic(c *cli.Context, path string) (*box.PublicKey, error) {
	if path == "" {
		return nil, errors.InvalidArgument("key file argument is required")
	}

	if filepath.Ext(path) != keyfile.SecretKeyExt {
		pub, err := keyfile.LoadPublicKey(path)
		if err != nil {
			return nil, errors.WrapWithMetadata(err, errors.CodeInvalidArgument, map[string]string{"path": path}, "invalid public key file")
		}
		return pub, nil
	}

	sec, err := keyfile.LoadSecretKey(path, runtimeFrom(c).passphrase)
	if err != nil {
		return nil, errors.WrapWithMetadata(err, errors.CodeInvalidArgument, map[string]string{"path": path}, "invalid secret key file")
	}
	defer sec.Destroy()

	pub, err := sec.Public()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidArgument, "invalid secret key")
	}
	return pub, nil
}
