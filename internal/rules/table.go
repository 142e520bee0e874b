package rules

import "github.com/Shirly8/sift/internal/model"

// defaultRules is the built-in merchant keyword table. Keywords are matched
// against normalized merchant keys, so punctuation variants collapse to the
// same entry.
var defaultRules = map[string][]string{
	model.CategoryGroceries: {
		"LOBLAWS", "SOBEYS", "METRO", "NO FRILLS", "FOOD BASICS", "FRESHCO",
		"LONGOS", "FARM BOY", "WHOLE FOODS", "WHOLEFDS", "T&T SUPERMARKET",
		"COSTCO WHOLESALE", "SAFEWAY", "SAVE ON FOODS", "TRADER JOES",
		"KROGER", "ALDI", "WALMART SUPERCENTRE", "REAL CDN SUPERSTORE",
		"SUPERSTORE", "INSTACART",
	},
	model.CategoryDelivery: {
		"UBER EATS", "UBEREATS", "DOORDASH", "SKIP THE DISHES", "SKIPTHEDISHES",
		"GRUBHUB", "FOODORA", "POSTMATES",
	},
	model.CategoryDining: {
		"STARBUCKS", "TIM HORTONS", "MCDONALDS", "SUBWAY", "CHIPOTLE",
		"A&W", "WENDYS", "BURGER KING", "PIZZA PIZZA", "DOMINOS",
		"POPEYES", "KFC", "FIVE GUYS", "SECOND CUP", "BOOSTER JUICE",
		"THE KEG", "EARLS", "CACTUS CLUB", "SWISS CHALET", "HARVEYS",
		"RESTAURANT", "CAFE", "BISTRO", "SUSHI", "RAMEN", "SHAWARMA",
	},
	model.CategoryTransport: {
		"UBER TRIP", "UBER", "LYFT", "PRESTO", "TTC", "GO TRANSIT",
		"VIA RAIL", "PETRO CANADA", "PETROCAN", "SHELL", "ESSO", "CHEVRON",
		"HUSKY", "PARKING", "IMPARK", "GREEN P", "AIR CANADA", "WESTJET",
	},
	model.CategorySubscriptions: {
		"NETFLIX", "SPOTIFY", "DISNEY PLUS", "DISNEYPLUS", "CRAVE",
		"APPLE COM BILL", "APPLE MUSIC", "YOUTUBE PREMIUM", "AMAZON PRIME",
		"PRIME VIDEO", "HBO MAX", "PARAMOUNT", "AUDIBLE", "PATREON",
		"ICLOUD", "DROPBOX", "ADOBE", "GITHUB", "CHATGPT", "OPENAI",
		"PLAYSTATION NETWORK", "XBOX GAME PASS", "NINTENDO",
	},
	model.CategoryShopping: {
		"AMAZON", "AMZN MKTP", "WALMART", "CANADIAN TIRE", "BEST BUY",
		"IKEA", "HOME DEPOT", "LOWES", "INDIGO", "CHAPTERS", "WINNERS",
		"MARSHALLS", "HOMESENSE", "THE BAY", "HUDSON BAY", "SPORT CHEK",
		"MEC", "ETSY", "EBAY", "ALIEXPRESS", "SHEIN", "UNIQLO", "ZARA",
		"H&M", "OLD NAVY", "GAP", "LULULEMON", "DOLLARAMA", "STAPLES",
	},
	model.CategoryEntertainment: {
		"CINEPLEX", "AMC THEATRES", "LANDMARK CINEMAS", "TICKETMASTER",
		"STUBHUB", "EVENTBRITE", "STEAM GAMES", "STEAMGAMES", "EPIC GAMES",
		"BOWLING", "ARCADE", "ESCAPE ROOM", "MUSEUM", "AQUARIUM", "ZOO",
	},
	model.CategoryHealth: {
		"SHOPPERS DRUG MART", "REXALL", "PHARMA", "PHARMACY", "DENTAL",
		"DENTIST", "PHYSIO", "CHIROPRACT", "OPTOMETR", "WALGREENS", "CVS",
		"LIFELABS", "MEDICAL", "CLINIC", "GOODLIFE FITNESS", "PLANET FITNESS",
		"FIT4LESS", "ANYTIME FITNESS", "YMCA",
	},
	model.CategoryBillsUtilities: {
		"ROGERS", "BELL CANADA", "TELUS", "FIDO", "KOODO", "FREEDOM MOBILE",
		"VIRGIN PLUS", "HYDRO", "TORONTO HYDRO", "BC HYDRO", "ENBRIDGE",
		"FORTIS", "EPCOR", "UTILITIES", "WATER BILL", "INTERNET",
	},
	model.CategoryRentHousing: {
		"RENT", "LANDLORD", "PROPERTY MANAGEMENT", "MORTGAGE", "CONDO FEE",
		"STRATA FEE", "AIRBNB",
	},
	model.CategoryEducation: {
		"UNIVERSITY", "COLLEGE", "TUITION", "UDEMY", "COURSERA", "SKILLSHARE",
		"DUOLINGO", "SCHOOL",
	},
	model.CategoryInsurance: {
		"INSURANCE", "MANULIFE", "SUN LIFE", "SUNLIFE", "INTACT", "AVIVA",
		"DESJARDINS INS", "TD INSURANCE", "BELAIR",
	},
	model.CategoryPersonalCare: {
		"SEPHORA", "BATH AND BODY", "BATH & BODY WORKS", "SALON", "BARBER",
		"NAILS", "SPA", "ULTA",
	},
	model.CategoryChildcare: {
		"DAYCARE", "CHILDCARE", "MONTESSORI", "BABYSIT",
	},
	model.CategoryIncome: {
		"PAYROLL", "DIRECT DEPOSIT", "SALARY", "PAY EMPLOYER", "CRA REFUND",
		"GST CREDIT", "CANADA CHILD BENEFIT", "EI PAYMENT", "DIVIDEND",
		"INTEREST PAID",
	},
	model.CategoryTransfer: {
		"E TRANSFER", "ETRANSFER", "INTERAC", "WIRE TRANSFER", "TFR TO",
		"TFR FROM", "TRANSFER TO", "TRANSFER FROM", "CREDIT CARD PAYMENT",
		"PAYMENT THANK YOU",
	},
}
