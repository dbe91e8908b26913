package contract

// BuiltinERC20 is the registry key of the standard ERC-20 interface.
const BuiltinERC20 = "erc20"

// erc20JSON is the EIP-20 subset w3fund talks to.
//
// Function selectors:
//
//	decimals()          → 0x313ce567
//	symbol()            → 0x95d89b41
//	balanceOf(address)  → 0x70a08231
//	allowance(a,a)      → 0xdd62ed3e
//	approve(a,u256)     → 0x095ea7b3
const erc20JSON = `[
  {"type":"function","name":"name","inputs":[],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"},
  {"type":"function","name":"symbol","inputs":[],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"},
  {"type":"function","name":"decimals","inputs":[],"outputs":[{"name":"","type":"uint8"}],"stateMutability":"view"},
  {"type":"function","name":"balanceOf","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
  {"type":"function","name":"allowance","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
  {"type":"function","name":"approve","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"},
  {"type":"event","name":"Approval","anonymous":false,"inputs":[{"name":"owner","type":"address","indexed":true},{"name":"spender","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]}
]`

func init() {
	RegisterBuiltin(&BuiltinKind{
		ID:          BuiltinERC20,
		Name:        "ERC-20 Standard Token",
		Description: "Standard ERC-20 interface (EIP-20).",
		JSON:        erc20JSON,
	})
}
