package model

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/2022bcs0010-jaasir/lab7/pkg/errors"
)

// SaveWeights はアーティファクトをファイルに保存する
//
// 一時ファイルに書き込んでから rename するため、途中で失敗しても
// 既存のアーティファクトは壊れない。親ディレクトリは必要に応じて作成する。
func SaveWeights(weights *ModelWeights, filename string) (err error) {
	if err := weights.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create artifact directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temporary artifact")
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "chmod temporary artifact")
	}
	if err = WriteWeights(weights, tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close temporary artifact")
	}
	if err = os.Rename(tmp.Name(), filename); err != nil {
		return errors.Wrapf(err, "move artifact into place at %s", filename)
	}
	return nil
}

// LoadWeights はファイルからアーティファクトを読み込み、形式とチェックサムを検証する
func LoadWeights(filename string) (*ModelWeights, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "open artifact %s", filename)
	}
	defer file.Close()

	weights, err := ReadWeights(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read artifact %s", filename)
	}
	return weights, nil
}

// WriteWeights はアーティファクトをio.Writerに書き出す
func WriteWeights(weights *ModelWeights, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(weights); err != nil {
		return errors.Wrap(err, "encode model weights")
	}
	return nil
}

// ReadWeights はio.Readerからアーティファクトを読み込む
func ReadWeights(r io.Reader) (*ModelWeights, error) {
	var weights ModelWeights
	if err := json.NewDecoder(r).Decode(&weights); err != nil {
		return nil, errors.Wrap(err, "decode model weights")
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if err := weights.VerifyChecksum(); err != nil {
		return nil, err
	}
	return &weights, nil
}
