// internal/blockchain/solbc/error_analyzer.go
package solbc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

// tokenProgramErrors – коды ошибок SPL Token программы.
var tokenProgramErrors = map[int]string{
	0:  "lamport balance below rent-exempt threshold",
	1:  "insufficient funds",
	2:  "invalid mint",
	3:  "account not associated with this mint",
	4:  "owner does not match",
	5:  "fixed supply",
	6:  "account already in use",
	7:  "invalid number of provided signers",
	8:  "invalid number of required signers",
	9:  "state is uninitialized",
	10: "instruction does not support native tokens",
	11: "non-native account can only be closed if its balance is zero",
	12: "invalid instruction",
	13: "state is invalid for requested operation",
	14: "operation overflowed",
	15: "account does not support specified authority type",
	16: "this token mint cannot freeze accounts",
	17: "account is frozen",
	18: "the provided decimals value different from the mint decimals",
	19: "instruction does not support non-native tokens",
}

// ErrorAnalyzer разбирает ошибки RPC и статусов транзакций.
type ErrorAnalyzer struct {
	logger *zap.Logger
}

// NewErrorAnalyzer creates a new ErrorAnalyzer instance
func NewErrorAnalyzer(logger *zap.Logger) *ErrorAnalyzer {
	return &ErrorAnalyzer{
		logger: logger.Named("error-analyzer"),
	}
}

// isMissingAccountRPCError узнаёт ответ узла "could not find account" (-32602),
// которым getTokenAccountBalance отвечает на несуществующий аккаунт.
func isMissingAccountRPCError(err error) bool {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return false
	}
	return rpcErr.Code == -32602 && strings.Contains(strings.ToLower(rpcErr.Message), "could not find account")
}

// AnalyzeRPCError раскладывает jsonrpc.RPCError на поля для логирования.
func (ea *ErrorAnalyzer) AnalyzeRPCError(err error) map[string]interface{} {
	if err == nil {
		return map[string]interface{}{"error": "No error provided"}
	}

	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return map[string]interface{}{
			"type":    "generic_error",
			"message": err.Error(),
		}
	}

	result := map[string]interface{}{
		"type":    "rpc_error",
		"code":    rpcErr.Code,
		"message": rpcErr.Message,
	}

	if !strings.Contains(rpcErr.Message, "Transaction simulation failed") {
		return result
	}
	result["simulation_failed"] = true

	dataMap, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return result
	}
	if logs, ok := dataMap["logs"].([]interface{}); ok {
		result["logs"] = logs
		for _, entry := range logs {
			line, ok := entry.(string)
			if !ok {
				continue
			}
			if code, ok := parseCustomErrorCode(line); ok {
				result["token_error_code"] = code
				if msg, ok := tokenProgramErrors[code]; ok {
					result["token_error"] = msg
				}
			}
		}
	}
	if instrErr, ok := dataMap["err"]; ok {
		result["instruction_error"] = instrErr
	}
	return result
}

// Describe возвращает короткое человекочитаемое описание ошибки отправки.
func (ea *ErrorAnalyzer) Describe(err error) string {
	analysis := ea.AnalyzeRPCError(err)
	if msg, ok := analysis["token_error"].(string); ok {
		return "token program: " + msg
	}
	if analysis["simulation_failed"] == true {
		return "transaction simulation failed"
	}
	return "send failed"
}

// DescribeStatusErr описывает ошибку из статуса подписи,
// например {"InstructionError":[1,{"Custom":1}]}.
func DescribeStatusErr(statusErr interface{}) string {
	if statusErr == nil {
		return ""
	}

	if m, ok := statusErr.(map[string]interface{}); ok {
		if ie, ok := m["InstructionError"].([]interface{}); ok && len(ie) == 2 {
			index := fmt.Sprintf("%v", ie[0])
			if detail, ok := ie[1].(map[string]interface{}); ok {
				if custom, ok := detail["Custom"].(float64); ok {
					if msg, ok := tokenProgramErrors[int(custom)]; ok {
						return fmt.Sprintf("instruction %s: %s", index, msg)
					}
					return fmt.Sprintf("instruction %s: custom program error %d", index, int(custom))
				}
			}
			return fmt.Sprintf("instruction %s: %v", index, ie[1])
		}
	}

	raw, err := json.Marshal(statusErr)
	if err != nil {
		return fmt.Sprintf("%v", statusErr)
	}
	return string(raw)
}

// parseCustomErrorCode извлекает код из строки вида "custom program error: 0x1".
func parseCustomErrorCode(line string) (int, bool) {
	const marker = "custom program error: 0x"
	idx := strings.Index(line, marker)
	if idx < 0 {
		return 0, false
	}
	hex := line[idx+len(marker):]
	if end := strings.IndexFunc(hex, func(r rune) bool {
		return !strings.ContainsRune("0123456789abcdefABCDEF", r)
	}); end >= 0 {
		hex = hex[:end]
	}
	code, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return 0, false
	}
	return int(code), true
}
