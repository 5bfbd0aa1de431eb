package etherscan

// tokenTxRecord is one entry of the account/tokentx action.
type tokenTxRecord struct {
	Hash            string `json:"hash"`
	TimeStamp       string `json:"timeStamp"`
	From            string `json:"from"`
	To              string `json:"to"`
	ContractAddress string `json:"contractAddress"`
	Value           string `json:"value"`
	TokenDecimal    string `json:"tokenDecimal"`
	GasUsed         string `json:"gasUsed"`
	GasPrice        string `json:"gasPrice"`
}

// internalTxRecord is one entry of the account/txlistinternal action.
type internalTxRecord struct {
	Value   string `json:"value"`
	IsError string `json:"isError"`
}

// proxyTransaction is the eth_getTransactionByHash result.
type proxyTransaction struct {
	Value string `json:"value"`
	Input string `json:"input"`
}

// proxyReceipt is the eth_getTransactionReceipt result.
type proxyReceipt struct {
	Logs []proxyLog `json:"logs"`
}

// proxyLog is one receipt log entry.
type proxyLog struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
}

// ethPriceResult is the stats/ethprice result.
type ethPriceResult struct {
	EthUSD string `json:"ethusd"`
}
