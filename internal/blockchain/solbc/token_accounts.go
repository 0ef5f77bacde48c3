// internal/blockchain/solbc/token_accounts.go
package solbc

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/oyevasu/spl-token-studio/internal/blockchain"
)

// parsedTokenAccount – форма jsonParsed ответа для аккаунта SPL Token.
type parsedTokenAccount struct {
	Parsed struct {
		Type string `json:"type"`
		Info struct {
			Mint        string `json:"mint"`
			Owner       string `json:"owner"`
			TokenAmount struct {
				Amount   string `json:"amount"`
				Decimals uint8  `json:"decimals"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
	Program string `json:"program"`
}

func parseTokenAccount(account solana.PublicKey, raw []byte) (blockchain.TokenHolding, error) {
	if len(raw) == 0 {
		return blockchain.TokenHolding{}, fmt.Errorf("no parsed data for %s", account)
	}

	var parsed parsedTokenAccount
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return blockchain.TokenHolding{}, fmt.Errorf("unmarshal token account %s: %w", account, err)
	}
	if parsed.Parsed.Type != "" && parsed.Parsed.Type != "account" {
		return blockchain.TokenHolding{}, fmt.Errorf("unexpected parsed type %q for %s", parsed.Parsed.Type, account)
	}

	info := parsed.Parsed.Info
	mint, err := solana.PublicKeyFromBase58(info.Mint)
	if err != nil {
		return blockchain.TokenHolding{}, fmt.Errorf("token account %s mint: %w", account, err)
	}
	owner, err := solana.PublicKeyFromBase58(info.Owner)
	if err != nil {
		return blockchain.TokenHolding{}, fmt.Errorf("token account %s owner: %w", account, err)
	}
	amount, err := parseUITokenAmount(info.TokenAmount.Amount, info.TokenAmount.Decimals)
	if err != nil {
		return blockchain.TokenHolding{}, fmt.Errorf("token account %s: %w", account, err)
	}

	return blockchain.TokenHolding{
		Account:  account,
		Mint:     mint,
		Owner:    owner,
		Amount:   amount.Amount,
		Decimals: amount.Decimals,
	}, nil
}

// parseUITokenAmount разбирает строковое поле amount (базовые единицы).
func parseUITokenAmount(amount string, decimals uint8) (blockchain.TokenAmount, error) {
	v, err := strconv.ParseUint(amount, 10, 64)
	if err != nil {
		return blockchain.TokenAmount{}, fmt.Errorf("parse token amount %q: %w", amount, err)
	}
	return blockchain.TokenAmount{Amount: v, Decimals: decimals}, nil
}
