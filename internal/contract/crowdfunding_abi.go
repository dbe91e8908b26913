package contract

// BuiltinCrowdfunding is the registry key of the crowdfunding platform.
const BuiltinCrowdfunding = "crowdfunding"

// crowdfundingJSON covers the CrowdfundingPlatform functions the client
// uses. Campaign.status is the Solidity enum {Active, Completed, Claimed}.
const crowdfundingJSON = `[
  {"type":"function","name":"getCampaigns","inputs":[],"outputs":[{"name":"","type":"tuple[]","internalType":"struct CrowdfundingPlatform.Campaign[]","components":[
    {"name":"creator","type":"address","internalType":"address"},
    {"name":"title","type":"string","internalType":"string"},
    {"name":"description","type":"string","internalType":"string"},
    {"name":"goal","type":"uint256","internalType":"uint256"},
    {"name":"amountRaised","type":"uint256","internalType":"uint256"},
    {"name":"status","type":"uint8","internalType":"enum CrowdfundingPlatform.CampaignStatus"}
  ]}],"stateMutability":"view"},
  {"type":"function","name":"getContributionByUser","inputs":[{"name":"_campaignId","type":"uint256"},{"name":"_user","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
  {"type":"function","name":"contribute","inputs":[{"name":"_campaignId","type":"uint256"},{"name":"_amount","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
  {"type":"function","name":"withdraw","inputs":[{"name":"_campaignId","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"}
]`

func init() {
	RegisterBuiltin(&BuiltinKind{
		ID:          BuiltinCrowdfunding,
		Name:        "CrowdfundingPlatform",
		Description: "USDC crowdfunding platform: campaigns, contributions and creator withdrawals.",
		JSON:        crowdfundingJSON,
	})
}
